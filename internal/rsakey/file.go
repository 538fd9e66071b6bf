package rsakey

import (
	"bytes"
	"fmt"
	"os"

	"github.com/relayforge/rsaforge/internal/canon"
	"github.com/relayforge/rsaforge/internal/rsaerr"
)

const (
	publicLabel  = "PUBLIC KEY"
	privateLabel = "PRIVATE KEY"
)

// WriteFiles writes the public and private key files for stem as
// "<stem>-{public,private}.{bin|pem}". When pem is true the binary
// encoding is built in memory and armored before it hits disk, so no
// temporary files are needed.
func (k *Key) WriteFiles(stem string, pem bool) (publicPath, privatePath string, err error) {
	var pubBuf, privBuf bytes.Buffer
	if err = k.SerializePublic(&pubBuf); err != nil {
		return "", "", err
	}
	if err = k.SerializePrivate(&privBuf); err != nil {
		return "", "", err
	}

	ext := "bin"
	if pem {
		ext = "pem"
	}
	publicPath = fmt.Sprintf("%s-public.%s", stem, ext)
	privatePath = fmt.Sprintf("%s-private.%s", stem, ext)

	pubOut := pubBuf.Bytes()
	privOut := privBuf.Bytes()
	if pem {
		pubOut = []byte(canon.Armor(pubOut, publicLabel))
		privOut = []byte(canon.Armor(privOut, privateLabel))
	}

	if err = os.WriteFile(publicPath, pubOut, 0644); err != nil {
		return "", "", rsaerr.Wrap(rsaerr.KeyFileIO, "write public key file", err)
	}
	if err = os.WriteFile(privatePath, privOut, 0600); err != nil {
		return "", "", rsaerr.Wrap(rsaerr.KeyFileIO, "write private key file", err)
	}
	return publicPath, privatePath, nil
}

// LoadFile reads a key file from path, transparently de-armoring it if it
// begins with the PEM-style "-----BEGIN" marker, and deserializes the
// resulting binary record stream.
func LoadFile(path string) (*Key, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, rsaerr.Wrap(rsaerr.KeyFileIO, "read key file", err)
	}

	binaryForm := raw
	if bytes.HasPrefix(raw, []byte("-----BEGIN")) {
		binaryForm, err = canon.Dearmor(string(raw))
		if err != nil {
			return nil, err
		}
	}

	return Deserialize(bytes.NewReader(binaryForm))
}
