// Package frame implements the OpenToken binary frame: the fixed header,
// HMAC, IV, key-info, and length-prefixed ciphertext described by the
// format, plus the HMAC authentication, CBC encryption, and DEFLATE
// (zlib) compression that sit around it. This is the core of the
// OpenToken codec; everything above it (claim validation) operates on
// the ordered payload this package produces and consumes.
package frame

import (
	"bytes"
	"compress/zlib"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"hash"
	"io"

	"github.com/yoonjesung/go-opentoken/ciphersuite"
	"github.com/yoonjesung/go-opentoken/errs"
	"github.com/yoonjesung/go-opentoken/pairs"
	"github.com/yoonjesung/go-opentoken/textcodec"
)

const (
	headerLiteral = "OTK"
	version       = 1
	hmacSize      = 20
	maxPayload    = 0xFFFF
)

// Options carries the capabilities a caller can override for
// determinism in tests: the randomness source used for IV generation and
// the PBKDF2 salt. The zero value uses crypto/rand.Reader and the
// format's fixed zero salt.
type Options struct {
	// Rand supplies IV bytes. Defaults to crypto/rand.Reader.
	Rand io.Reader
	// Salt overrides the PBKDF2 salt. Defaults to ciphersuite.DefaultSalt.
	Salt []byte
}

func (o Options) rand() io.Reader {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.Reader
}

// Encode builds an OpenToken string for payload under suite, encrypted
// and authenticated with a key derived from password.
func Encode(payload pairs.Pairs, suite ciphersuite.Suite, password []byte, opts Options) (string, error) {
	key, err := ciphersuite.DeriveKey(password, suite, opts.Salt)
	if err != nil {
		return "", err
	}
	return EncodeWithKey(payload, suite, key, opts)
}

// EncodeWithKey builds an OpenToken string for payload under suite using
// an already-derived key, bypassing PBKDF2. Callers that cache a derived
// key per (password, suite) — as permitted by the format — use this to
// avoid re-deriving it on every call.
func EncodeWithKey(payload pairs.Pairs, suite ciphersuite.Suite, key []byte, opts Options) (string, error) {
	if !suite.Valid() {
		return "", errs.BadArgumentf("invalid cipher suite: %d", suite)
	}

	cleartext := []byte(payload.Line())

	ivLength, err := suite.IVLength()
	if err != nil {
		return "", err
	}
	iv := make([]byte, ivLength)
	if ivLength > 0 {
		if _, err := io.ReadFull(opts.rand(), iv); err != nil {
			return "", errs.BadArgumentf("failed to generate IV: %v", err)
		}
	}

	digest := hmacDigest(key, suite, iv, nil, cleartext)

	var zipped bytes.Buffer
	zw := zlib.NewWriter(&zipped)
	if _, err := zw.Write(cleartext); err != nil {
		return "", errs.BadArgumentf("failed to compress payload: %v", err)
	}
	if err := zw.Close(); err != nil {
		return "", errs.BadArgumentf("failed to compress payload: %v", err)
	}

	var ciphertext []byte
	if suite == ciphersuite.None {
		ciphertext = zipped.Bytes()
	} else {
		blockSize, err := suite.BlockSize()
		if err != nil {
			return "", err
		}
		block, err := suite.NewBlock(key)
		if err != nil {
			return "", errs.BadArgumentf("failed to construct cipher: %v", err)
		}
		padded := pkcs5Pad(zipped.Bytes(), blockSize)
		ciphertext = make([]byte, len(padded))
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	}

	if len(ciphertext) > maxPayload {
		return "", errs.BadArgumentf("payload too large to encode: %d bytes exceeds the %d byte limit", len(ciphertext), maxPayload)
	}

	var buf bytes.Buffer
	buf.WriteString(headerLiteral)
	buf.WriteByte(version)
	buf.WriteByte(byte(suite))
	buf.Write(digest)
	buf.WriteByte(byte(ivLength))
	buf.Write(iv)
	buf.WriteByte(0) // key_info_length: this core never emits key info.
	var payloadLen [2]byte
	binary.BigEndian.PutUint16(payloadLen[:], uint16(len(ciphertext)))
	buf.Write(payloadLen[:])
	buf.Write(ciphertext)

	b64 := base64.URLEncoding.EncodeToString(buf.Bytes())
	return textcodec.ToOTK(b64), nil
}

// Decode parses and authenticates an OpenToken string, returning its
// ordered payload. suite must match the cipher suite id embedded in the
// token; password must match the one used to encode it.
func Decode(otk string, suite ciphersuite.Suite, password []byte, opts Options) (pairs.Pairs, error) {
	key, err := ciphersuite.DeriveKey(password, suite, opts.Salt)
	if err != nil {
		return nil, err
	}
	return DecodeWithKey(otk, suite, key, opts)
}

// DecodeWithKey parses and authenticates an OpenToken string using an
// already-derived key, bypassing PBKDF2. See EncodeWithKey.
func DecodeWithKey(otk string, suite ciphersuite.Suite, key []byte, opts Options) (pairs.Pairs, error) {
	if !suite.Valid() {
		return nil, errs.BadArgumentf("invalid cipher suite: %d", suite)
	}

	raw, err := base64.URLEncoding.DecodeString(textcodec.FromOTK(otk))
	if err != nil {
		return nil, errs.MalformedWrap(err, "invalid base64 token")
	}

	r := &reader{buf: raw}

	header, err := r.take(3)
	if err != nil {
		return nil, errs.Malformed("token is too short to contain a header")
	}
	if string(header) != headerLiteral {
		return nil, errs.Malformedf("Invalid token header literal: %s", header)
	}

	tokenVersion, err := r.byte()
	if err != nil {
		return nil, errs.Malformed("token is too short to contain a version")
	}
	if tokenVersion != version {
		return nil, errs.Malformedf("unsupported token version: %d", tokenVersion)
	}

	tokenSuiteByte, err := r.byte()
	if err != nil {
		return nil, errs.Malformed("token is too short to contain a cipher suite id")
	}
	tokenSuite := ciphersuite.Suite(tokenSuiteByte)
	if tokenSuite != suite {
		return nil, errs.Malformedf("token cipher suite %d does not match requested suite %d", tokenSuite, suite)
	}

	digest, err := r.take(hmacSize)
	if err != nil {
		return nil, errs.Malformed("token is too short to contain an HMAC")
	}

	ivLength, err := r.byte()
	if err != nil {
		return nil, errs.Malformed("token is too short to contain an IV length")
	}
	iv, err := r.take(int(ivLength))
	if err != nil {
		return nil, errs.Malformed("token is truncated in its IV")
	}

	keyInfoLength, err := r.byte()
	if err != nil {
		return nil, errs.Malformed("token is too short to contain a key info length")
	}
	keyInfo, err := r.take(int(keyInfoLength))
	if err != nil {
		return nil, errs.Malformed("token is truncated in its key info")
	}

	payloadLenBytes, err := r.take(2)
	if err != nil {
		return nil, errs.Malformed("token is too short to contain a payload length")
	}
	payloadLen := binary.BigEndian.Uint16(payloadLenBytes)
	ciphertext, err := r.take(int(payloadLen))
	if err != nil {
		return nil, errs.Malformed("token is truncated in its payload")
	}

	var zipped []byte
	if suite == ciphersuite.None {
		zipped = ciphertext
	} else {
		blockSize, err := suite.BlockSize()
		if err != nil {
			return nil, err
		}
		if len(ciphertext) == 0 || len(ciphertext)%blockSize != 0 {
			return nil, errs.BadCredentials("Error decrypting token.")
		}
		block, err := suite.NewBlock(key)
		if err != nil {
			return nil, errs.BadArgumentf("failed to construct cipher: %v", err)
		}
		padded := make([]byte, len(ciphertext))
		cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)
		unpadded, err := pkcs5Unpad(padded, blockSize)
		if err != nil {
			return nil, errs.BadCredentials("Error decrypting token.")
		}
		zipped = unpadded
	}

	cleartext, err := zlibDecompress(zipped)
	if err != nil {
		return nil, errs.MalformedWrap(err, "failed to decompress token payload")
	}

	expected := hmacDigest(key, suite, iv, keyInfo, cleartext)
	if !hmac.Equal(expected, digest) {
		return nil, errs.BadCredentials("HMAC does not match.")
	}

	return pairs.ParseLine(string(cleartext))
}

// hmacDigest computes the OpenToken HMAC over
// version || suite || iv (if any) || key_info (if any) || cleartext.
// Suite None uses an unkeyed SHA-1 digest instead of a keyed HMAC.
func hmacDigest(key []byte, suite ciphersuite.Suite, iv, keyInfo, cleartext []byte) []byte {
	var h hash.Hash
	if suite == ciphersuite.None {
		h = sha1.New()
	} else {
		h = hmac.New(sha1.New, key)
	}
	h.Write([]byte{version})
	h.Write([]byte{byte(suite)})
	if len(iv) > 0 {
		h.Write(iv)
	}
	if len(keyInfo) > 0 {
		h.Write(keyInfo)
	}
	h.Write(cleartext)
	return h.Sum(nil)
}

func zlibDecompress(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	var out bytes.Buffer
	if _, err := io.Copy(&out, zr); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// pkcs5Pad appends PKCS#5/7 padding to data so its length is a multiple
// of blockSize.
func pkcs5Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(append([]byte{}, data...), padding...)
}

// pkcs5Unpad validates and strips PKCS#5/7 padding from data.
func pkcs5Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errs.Malformed("padded buffer is not a multiple of the block size")
	}
	padLen := int(data[len(data)-1])
	if padLen < 1 || padLen > blockSize || padLen > len(data) {
		return nil, errs.Malformed("invalid padding")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, errs.Malformed("invalid padding")
		}
	}
	return data[:len(data)-padLen], nil
}

// reader walks buf forward, returning io.ErrUnexpectedEOF on truncation;
// callers turn that into a Malformed error.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *reader) byte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}
