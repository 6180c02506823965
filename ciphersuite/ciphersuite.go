// Package ciphersuite defines the OpenToken cipher suite table and the
// PBKDF2 key derivation used to turn a password into a suite-sized key.
package ciphersuite

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/sha1"

	"golang.org/x/crypto/pbkdf2"

	"github.com/yoonjesung/go-opentoken/errs"
)

// Suite identifies one of the four OpenToken cipher suites by its
// single-byte wire id.
type Suite byte

// The closed set of OpenToken cipher suites.
const (
	None         Suite = 0
	AES256CBC    Suite = 1
	AES128CBC    Suite = 2
	TripleDESCBC Suite = 3
)

// pbkdf2Iterations is fixed by the OpenToken format; it is not configurable.
const pbkdf2Iterations = 1000

// DefaultSalt is the eight-byte zero salt used for PBKDF2 unless a caller
// overrides it. This is a known weakness of the format, preserved as-is.
var DefaultSalt = []byte{0, 0, 0, 0, 0, 0, 0, 0}

// spec carries the per-suite constants and cipher constructor used by
// FrameCodec. newBlock is nil for None.
type spec struct {
	name      string
	keyBytes  int
	ivLength  int
	blockSize int
	newBlock  func(key []byte) (cipher.Block, error)
}

var table = map[Suite]spec{
	None:         {name: "none", keyBytes: 0, ivLength: 0, blockSize: 0, newBlock: nil},
	AES256CBC:    {name: "aes-256-cbc", keyBytes: 32, ivLength: 16, blockSize: aes.BlockSize, newBlock: aes.NewCipher},
	AES128CBC:    {name: "aes-128-cbc", keyBytes: 16, ivLength: 16, blockSize: aes.BlockSize, newBlock: aes.NewCipher},
	TripleDESCBC: {name: "3des", keyBytes: 21, ivLength: 8, blockSize: des.BlockSize, newBlock: des.NewTripleDESCipher},
}

// String returns the suite's human-readable name, e.g. "aes-128-cbc".
func (s Suite) String() string {
	if sp, ok := table[s]; ok {
		return sp.name
	}
	return "unknown"
}

// Valid reports whether s is one of the four defined suites.
func (s Suite) Valid() bool {
	_, ok := table[s]
	return ok
}

// KeySize returns the suite's derived key length in bytes.
func (s Suite) KeySize() (int, error) {
	sp, ok := table[s]
	if !ok {
		return 0, errs.BadArgumentf("invalid cipher suite: %d", s)
	}
	return sp.keyBytes, nil
}

// IVLength returns the suite's IV length in bytes (0 for None).
func (s Suite) IVLength() (int, error) {
	sp, ok := table[s]
	if !ok {
		return 0, errs.BadArgumentf("invalid cipher suite: %d", s)
	}
	return sp.ivLength, nil
}

// BlockSize returns the suite's cipher block size in bytes (0 for None).
func (s Suite) BlockSize() (int, error) {
	sp, ok := table[s]
	if !ok {
		return 0, errs.BadArgumentf("invalid cipher suite: %d", s)
	}
	return sp.blockSize, nil
}

// NewBlock constructs a cipher.Block for this suite using key. It returns
// (nil, nil) for None, since the null suite performs no encryption.
func (s Suite) NewBlock(key []byte) (cipher.Block, error) {
	sp, ok := table[s]
	if !ok {
		return nil, errs.BadArgumentf("invalid cipher suite: %d", s)
	}
	if sp.newBlock == nil {
		return nil, nil
	}
	return sp.newBlock(key)
}

// DeriveKey derives a symmetric key for suite from password using
// PBKDF2-HMAC-SHA1 with 1000 iterations, per the OpenToken format. salt
// defaults to DefaultSalt when nil. For Suite None, DeriveKey returns an
// empty key and performs no PBKDF2 work.
func DeriveKey(password []byte, suite Suite, salt []byte) ([]byte, error) {
	keySize, err := suite.KeySize()
	if err != nil {
		return nil, err
	}
	if keySize == 0 {
		return []byte{}, nil
	}
	if salt == nil {
		salt = DefaultSalt
	}
	return pbkdf2.Key(password, salt, pbkdf2Iterations, keySize, sha1.New), nil
}
