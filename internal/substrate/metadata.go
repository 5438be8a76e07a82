package substrate

import (
	"fmt"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"

	"github.com/jungoai/jungo-cli/internal/chain"
)

// metadata answers the lookups the client needs from runtime metadata.
type metadata struct {
	raw *types.Metadata
}

func (m metadata) pallets() []types.PalletMetadataV14 {
	return m.raw.AsMetadataV14.Pallets
}

func (m metadata) variants(id types.Si1LookupTypeID) []types.Si1Variant {
	t, ok := m.raw.AsMetadataV14.EfficientLookup[id.Int64()]
	if !ok || t == nil || !t.Def.IsVariant {
		return nil
	}
	return t.Def.Variant.Variants
}

func (m metadata) constant(module, name string) ([]byte, error) {
	for _, p := range m.pallets() {
		if string(p.Name) != module {
			continue
		}
		for _, c := range p.Constants {
			if string(c.Name) == name {
				return c.Value, nil
			}
		}
	}
	return nil, fmt.Errorf("%s.%s: %w", module, name, chain.ErrUnknownConstant)
}

// callName resolves a pallet and call index to "Module.function" and the
// call's argument names.
func (m metadata) callName(pallet, call uint8) (string, []string, bool) {
	for _, p := range m.pallets() {
		if uint8(p.Index) != pallet || !p.HasCalls {
			continue
		}
		for _, v := range m.variants(p.Calls.Type) {
			if uint8(v.Index) != call {
				continue
			}
			var args []string
			for _, f := range v.Fields {
				if f.HasName {
					args = append(args, string(f.Name))
				}
			}
			return string(p.Name) + "." + string(v.Name), args, true
		}
	}
	return "", nil, false
}

// moduleError resolves a pallet error index to a DispatchError.
func (m metadata) moduleError(pallet, index uint8) *chain.DispatchError {
	for _, p := range m.pallets() {
		if uint8(p.Index) != pallet {
			continue
		}
		if !p.HasErrors {
			break
		}
		for _, v := range m.variants(p.Errors.Type) {
			if uint8(v.Index) != index {
				continue
			}
			docs := make([]string, len(v.Docs))
			for i, d := range v.Docs {
				docs[i] = string(d)
			}
			return &chain.DispatchError{Module: string(p.Name), Name: string(v.Name), Docs: docs}
		}
		return &chain.DispatchError{Raw: fmt.Sprintf("unknown error %d of %s", index, p.Name)}
	}
	return &chain.DispatchError{Raw: fmt.Sprintf("unknown error %d of pallet %d", index, pallet)}
}

// describeCall renders an encoded call as "Module.function(arg, ...)"
// followed by the hex-encoded arguments.
func (m metadata) describeCall(encoded []byte) (string, error) {
	if len(encoded) < 2 {
		return "", fmt.Errorf("call too short: %d bytes", len(encoded))
	}
	name, args, ok := m.callName(encoded[0], encoded[1])
	if !ok {
		return "", fmt.Errorf("unknown call index %d.%d", encoded[0], encoded[1])
	}
	desc := name + "(" + strings.Join(args, ", ") + ")"
	if len(encoded) > 2 {
		desc += " " + codec.HexEncodeToString(encoded[2:])
	}
	return desc, nil
}
