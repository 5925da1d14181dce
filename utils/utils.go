package utils

import (
	"crypto/rand"
	"log"
	"math/big"
	"os"
)

const randomStringCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateRandomString returns an opaque random string of length 'n',
// e.g. for temporary account passwords.
func GenerateRandomString(n int) (string, error) {
	result := make([]byte, n)
	for i := range result {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(randomStringCharset))))
		if err != nil {
			return "", err
		}
		result[i] = randomStringCharset[idx.Int64()]
	}

	return string(result), nil
}

func FileExist(filePath string) bool {
	var err error

	if _, err = os.Stat(filePath); os.IsNotExist(err) {
		return false
	}

	if err != nil {
		log.Panic(err)
	}

	return true
}

func CreateDirIfNotExist(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return err
		}
	}

	return nil
}
