// Command derivevectorgen emits username derivation vectors as JSON.
// Redirect stdout to derive/testdata/username_vectors.json to refresh
// the conformance fixtures.
package main

import (
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/entropool/entropool/derive"
)

type vector struct {
	SaltHex string `json:"saltHex"`
	Domain  string `json:"domain"`
	Length  int    `json:"length"`
	Value   string `json:"value"`
}

func patternKey(n int, step byte) []byte {
	key := make([]byte, n)
	for i := range key {
		key[i] = byte(i)*step + 1
	}
	return key
}

func main() {
	cases := []struct {
		key    []byte
		domain string
		length int
	}{
		{make([]byte, 32), "example.com", 16},
		{make([]byte, 32), "example.com", 1},
		{make([]byte, 32), "example.com", 128},
		{make([]byte, 32), "sub.example-2.com", 16},
		{patternKey(derive.SaltSize, 3), "example.com", 16},
		{patternKey(derive.SaltSize, 3), "https://Example.COM/login", 24},
		{patternKey(derive.SaltSize, 7), "example.com", 16},
	}

	vectors := make([]vector, 0, len(cases))
	for _, c := range cases {
		sc, err := derive.ContextFromKey(c.key)
		if err != nil {
			panic(err)
		}
		value, err := sc.Username(c.domain, c.length)
		if err != nil {
			panic(err)
		}
		vectors = append(vectors, vector{
			SaltHex: hex.EncodeToString(c.key),
			Domain:  c.domain,
			Length:  c.length,
			Value:   value,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(vectors); err != nil {
		panic(err)
	}
}
