// Package cipher implements the vendor's payload encryption scheme:
// AES-256-CBC keyed by the lowercase-hex MD5 digest of the app secret,
// IV taken from the event nonce, with legacy-tolerant PKCS7 unpadding.
package cipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/kso-sdk/openevent-client/errs"
)

// DeriveKey produces the 32-byte AES-256 key from a secret key: the
// lowercase-hex encoding of MD5(secretKey), used as ASCII bytes rather
// than the raw 16-byte digest.
func DeriveKey(secretKey string) []byte {
	sum := md5.Sum([]byte(secretKey))
	return []byte(hex.EncodeToString(sum[:]))
}

// Decrypt base64-decodes encryptedData, then AES-256-CBC decrypts it
// using a key derived from secretKey and an IV taken from the first 16
// bytes of nonce, unpadding with legacy-tolerant PKCS7.
func Decrypt(secretKey, nonce, encryptedData string) ([]byte, error) {
	if len(nonce) < aes.BlockSize {
		return nil, &errs.DecryptError{Cause: fmt.Errorf("cipher: nonce shorter than block size")}
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encryptedData)
	if err != nil {
		return nil, &errs.DecryptError{Cause: fmt.Errorf("cipher: base64 decode: %w", err)}
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, &errs.DecryptError{Cause: fmt.Errorf("cipher: ciphertext is not a multiple of the block size")}
	}

	key := DeriveKey(secretKey)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, &errs.DecryptError{Cause: fmt.Errorf("cipher: new aes cipher: %w", err)}
	}

	iv := []byte(nonce)[:aes.BlockSize]
	plaintext := make([]byte, len(ciphertext))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(plaintext, ciphertext)

	return unpadPKCS7(plaintext), nil
}

// Encrypt is a test-only helper producing the base64 ciphertext a
// conforming server would send, the inverse of Decrypt.
func Encrypt(secretKey, nonce string, plaintext []byte) (string, error) {
	if len(nonce) < aes.BlockSize {
		return "", fmt.Errorf("cipher: nonce shorter than block size")
	}

	key := DeriveKey(secretKey)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("cipher: new aes cipher: %w", err)
	}

	padded := padPKCS7(plaintext, aes.BlockSize)
	iv := []byte(nonce)[:aes.BlockSize]
	out := make([]byte, len(padded))
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(out, padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

func padPKCS7(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// unpadPKCS7 strips a PKCS7 pad when the trailing byte looks like a
// plausible pad length; otherwise it returns data unmodified, matching
// legacy payloads that were never padded.
func unpadPKCS7(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) || padLen > aes.BlockSize {
		return data
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return data
		}
	}
	return data[:len(data)-padLen]
}
