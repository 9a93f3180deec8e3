package psarc

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/jsphweid/rstabber/constants"
)

func testPSARCKey() []byte { return constants.PSARCKey }

func newAESForTest(key []byte) (cipher.Block, error) { return aes.NewCipher(key) }
