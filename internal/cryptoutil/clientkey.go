package cryptoutil

import (
	"fmt"

	"github.com/universa-network/clientendpoint/internal/apperrors"
	"github.com/universa-network/clientendpoint/internal/wireformat"
)

// ParseClientKey unpacks a wire-format {sign, dh} Binder into a ClientKey.
// A malformed or short key is reported as apperrors.BadClientKey, since
// this is always encountered on the untrusted /connect boundary.
func ParseClientKey(raw []byte) (ClientKey, error) {
	b, err := wireformat.Unpack(raw)
	if err != nil {
		return ClientKey{}, apperrors.NewClientError(apperrors.BadClientKey, "public_key", err.Error())
	}
	signBytes, err := b.GetBytes("sign")
	if err != nil {
		return ClientKey{}, apperrors.NewClientError(apperrors.BadClientKey, "public_key", err.Error())
	}
	dhBytes, err := b.GetBytes("dh")
	if err != nil {
		return ClientKey{}, apperrors.NewClientError(apperrors.BadClientKey, "public_key", err.Error())
	}
	signPub, err := MustSignPublic(signBytes)
	if err != nil {
		return ClientKey{}, apperrors.NewClientError(apperrors.BadClientKey, "public_key", err.Error())
	}
	dhPub, err := MustDHPublic(dhBytes)
	if err != nil {
		return ClientKey{}, apperrors.NewClientError(apperrors.BadClientKey, "public_key", err.Error())
	}
	return ClientKey{Sign: signPub, DH: dhPub}, nil
}

// PackClientKey serializes a ClientKey to its wire representation.
func PackClientKey(ck ClientKey) ([]byte, error) {
	b := wireformat.New("sign", ck.Sign[:], "dh", ck.DH[:])
	out, err := wireformat.Pack(b)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: pack client key: %w", err)
	}
	return out, nil
}
