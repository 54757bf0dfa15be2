package wireformat

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// ErrMissingKey is wrapped into the error returned by the Get* accessors
// when the requested key is not present in the Binder.
var ErrMissingKey = errors.New("wireformat: missing key")

// ErrWrongType is wrapped into the error returned by the Get* accessors
// when the requested key holds a value of an unexpected type.
var ErrWrongType = errors.New("wireformat: wrong type for key")

// Binder is a string-keyed, self-describing container. It is the map type
// exchanged between the router and every session handler.
type Binder map[string]interface{}

// decMode decodes nested maps as map[string]interface{} (instead of the
// library default of map[interface{}]interface{}) so that GetBinder can
// hand back a plain Binder without an intermediate conversion pass.
var decMode = mustDecMode()

func mustDecMode() cbor.DecMode {
	opts := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}
	mode, err := opts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("wireformat: building decode mode: %s", err))
	}
	return mode
}

// New builds a Binder from alternating key/value pairs, mirroring the
// Binder.fromKeysValues helper the original endpoint used throughout.
func New(pairs ...interface{}) Binder {
	b := make(Binder, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		b[key] = pairs[i+1]
	}
	return b
}

// Pack serializes a Binder to its wire representation.
func Pack(b Binder) ([]byte, error) {
	out, err := cbor.Marshal(map[string]interface{}(b))
	if err != nil {
		return nil, fmt.Errorf("wireformat: pack: %w", err)
	}
	return out, nil
}

// Unpack parses a wire representation back into a Binder.
func Unpack(data []byte) (Binder, error) {
	var raw map[string]interface{}
	if err := decMode.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("wireformat: unpack: %w", err)
	}
	return Binder(raw), nil
}

// GetBytes returns the byte string stored under key.
func (b Binder) GetBytes(key string) ([]byte, error) {
	v, ok := b[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	bs, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrWrongType, key)
	}
	return bs, nil
}

// GetLong returns the signed integer stored under key, normalizing whatever
// concrete integer kind the codec produced during decode.
func (b Binder) GetLong(key string) (int64, error) {
	v, ok := b[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %q overflows int64", ErrWrongType, key)
		}
		return int64(t), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrWrongType, key)
	}
}

// GetString returns the text string stored under key.
func (b Binder) GetString(key string) (string, error) {
	v, ok := b[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrWrongType, key)
	}
	return s, nil
}

// GetBinder returns the nested map stored under key.
func (b Binder) GetBinder(key string) (Binder, error) {
	v, ok := b[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	switch t := v.(type) {
	case Binder:
		return t, nil
	case map[string]interface{}:
		return Binder(t), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrWrongType, key)
	}
}
