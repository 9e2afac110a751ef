package bootstrap

import (
	"encoding/json"
	"fmt"
	"os"
)

// genesisAllocAddresses returns the keys of the genesis "alloc" object in
// file order. encoding/json maps discard key order, so the file is walked at
// token level; the positional node-to-address contract depends on the order
// the genesis generator wrote the allocations in.
func genesisAllocAddresses(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, configErrorf("could not read the genesis file %s: %v", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, configErrorf("malformed genesis file %s: %v", path, err)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, configErrorf("malformed genesis file %s: %v", path, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, configErrorf("malformed genesis file %s: unexpected token %v", path, tok)
		}
		if key == "alloc" {
			addresses, err := decodeObjectKeys(dec)
			if err != nil {
				return nil, configErrorf("malformed genesis alloc in %s: %v", path, err)
			}
			return addresses, nil
		}
		if err := skipValue(dec); err != nil {
			return nil, configErrorf("malformed genesis file %s: %v", path, err)
		}
	}
	return nil, configErrorf("genesis file %s has no alloc section", path)
}

// decodeObjectKeys consumes one JSON object and returns its keys in order.
func decodeObjectKeys(dec *json.Decoder) ([]string, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		keys = append(keys, key)
		if err := skipValue(dec); err != nil {
			return nil, err
		}
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return keys, nil
}

// skipValue consumes one JSON value of any shape.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); ok && (d == '{' || d == '[') {
		depth := 1
		for depth > 0 {
			tok, err = dec.Token()
			if err != nil {
				return err
			}
			if d, ok := tok.(json.Delim); ok {
				switch d {
				case '{', '[':
					depth++
				case '}', ']':
					depth--
				}
			}
		}
	}
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
