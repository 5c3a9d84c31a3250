package crypto

import "encoding/hex"

// HexEncode returns lower-case hex, the encoding used for keys and
// signatures on the wire.
func HexEncode(b []byte) string { return hex.EncodeToString(b) }

// HexDecode accepts either hex case.
func HexDecode(s string) ([]byte, error) { return hex.DecodeString(s) }
