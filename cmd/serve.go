package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/rstabber/constants"
	"github.com/jsphweid/rstabber/convert"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

func init() {
	serveCmd.Flags().String("addr", constants.HTTPAddr(), "HTTP listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the converter over HTTP",
	Long:  `Serves the converter over HTTP`,
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")
		serve(addr)
	},
}

type convertErrorResponse struct {
	Error    string   `json:"error"`
	Warnings []string `json:"warnings"`
}

// handleConvert stages the uploaded archive and the pipeline's output
// under constants.TempDir(), runs convert.Convert, and streams the
// resulting GPX back, cleaning up both staged files unconditionally.
func handleConvert(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeConvertError(w, http.StatusBadRequest, err, nil)
		return
	}
	defer file.Close()

	inputPath := constants.TempDir() + "/" + uuid.New().String() + ".psarc"
	outputPath := constants.TempDir() + "/" + uuid.New().String() + ".gpx"
	defer os.Remove(inputPath)
	defer os.Remove(outputPath)

	dst, err := os.Create(inputPath)
	if err != nil {
		writeConvertError(w, http.StatusInternalServerError, err, nil)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		writeConvertError(w, http.StatusInternalServerError, err, nil)
		return
	}
	dst.Close()

	result, err := convert.Convert(inputPath, outputPath, nil)
	if err != nil {
		writeConvertError(w, http.StatusUnprocessableEntity, err, nil)
		return
	}

	gpxBytes, err := os.ReadFile(outputPath)
	if err != nil {
		writeConvertError(w, http.StatusInternalServerError, err, nil)
		return
	}

	warnings := make([]string, 0, len(result.Warnings))
	for _, warn := range result.Warnings {
		warnings = append(warnings, fmt.Sprintf("%s: %s: %v", warn.Stage, warn.Name, warn.Err))
	}
	if len(warnings) > 0 {
		w.Header().Set("X-Conversion-Warnings", fmt.Sprintf("%d", len(warnings)))
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="converted.gpx"`)
	w.Write(gpxBytes)
}

func writeConvertError(w http.ResponseWriter, status int, err error, warnings []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(convertErrorResponse{Error: err.Error(), Warnings: warnings})
}

func serve(addr string) {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/convert", handleConvert).Methods("POST")

	handler := cors.Default().Handler(router)
	log.Printf("listening on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
