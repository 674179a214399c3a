package sconfig

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"reflect"
)

// Encryptor handles encryption/decryption operations.
type Encryptor interface {
	// Encrypt encrypts plaintext and returns ciphertext.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt decrypts ciphertext and returns plaintext.
	Decrypt(ciphertext []byte) ([]byte, error)
}

// aesEncryptor implements AES-GCM encryption.
type aesEncryptor struct {
	gcm cipher.AEAD
}

// AES returns an AES-GCM encryptor.
// Key must be 16, 24, or 32 bytes for AES-128, AES-192, or AES-256.
func AES(key []byte) (Encryptor, error) {
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return nil, fmt.Errorf("%w: must be 16, 24, or 32 bytes, got %d", ErrInvalidKey, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &aesEncryptor{gcm: gcm}, nil
}

func (e *aesEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// Prepend nonce to ciphertext
	return e.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (e *aesEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	nonceSize := e.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, ErrCiphertextShort
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := e.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	return plaintext, nil
}

// encryptSerializer stores string and []byte fields as base64 ciphertext and
// decrypts them on load.
type encryptSerializer struct {
	enc Encryptor
}

// EncryptSerializer returns a serializer that encrypts with enc. Register it
// under a name and reference that name from a `serialize` tag:
//
//	sconfig.RegisterSerializer("vault", sconfig.EncryptSerializer(enc))
//
//	type DB struct {
//	    Password string `serialize:"vault"`
//	}
func EncryptSerializer(enc Encryptor) Serializer {
	return &encryptSerializer{enc: enc}
}

// AESSerializer returns an AES-GCM serializer for key.
func AESSerializer(key []byte) (Serializer, error) {
	enc, err := AES(key)
	if err != nil {
		return nil, err
	}
	return EncryptSerializer(enc), nil
}

func (e *encryptSerializer) Serialize(v reflect.Value, _ *SerializerSet) (any, error) {
	var plaintext []byte
	switch {
	case v.Kind() == reflect.String:
		plaintext = []byte(v.String())
	case isByteSlice(v.Type()):
		plaintext = v.Bytes()
	default:
		return nil, newConversionError(ErrInvalidValue, v.Type(), iface(v), fmt.Errorf("encryption needs a string or []byte"))
	}
	if len(plaintext) == 0 {
		return "", nil
	}

	ciphertext, err := e.enc.Encrypt(plaintext)
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (e *encryptSerializer) Deserialize(data any, want reflect.Type, _ *SerializerSet) (reflect.Value, error) {
	s, ok := data.(string)
	if !ok {
		return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, fmt.Errorf("expected base64 ciphertext"))
	}

	var plaintext []byte
	if s != "" {
		ciphertext, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return reflect.Value{}, newConversionError(ErrDecryptionFailed, want, data, err)
		}
		plaintext, err = e.enc.Decrypt(ciphertext)
		if err != nil {
			return reflect.Value{}, newConversionError(ErrDecryptionFailed, want, data, err)
		}
	}

	switch {
	case want.Kind() == reflect.String:
		return reflect.ValueOf(string(plaintext)).Convert(want), nil
	case isByteSlice(want):
		return reflect.ValueOf(plaintext).Convert(want), nil
	}
	return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, fmt.Errorf("decryption needs a string or []byte"))
}
