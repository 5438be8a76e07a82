package substrate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type field struct {
	Name        string
	Value       any
	LookupIndex int64
}

func TestModuleErrorIndex_FieldLists(t *testing.T) {
	fields := []*field{
		{Name: "dispatch_error", Value: []*field{
			{Name: "Module", Value: []*field{
				{Name: "index", Value: uint8(7)},
				{Name: "error", Value: [4]uint8{12, 0, 0, 0}},
			}},
		}},
		{Name: "dispatch_info", Value: []*field{{Name: "class", Value: uint8(0)}}},
	}
	pallet, idx, ok := moduleErrorIndex(fields)
	assert.True(t, ok)
	assert.Equal(t, uint8(7), pallet)
	assert.Equal(t, uint8(12), idx)
}

func TestModuleErrorIndex_Maps(t *testing.T) {
	fields := map[string]any{
		"dispatch_error": map[string]any{
			"Module": map[string]any{"index": 3, "error": []any{uint8(5), uint8(0), uint8(0), uint8(0)}},
		},
	}
	pallet, idx, ok := moduleErrorIndex(fields)
	assert.True(t, ok)
	assert.Equal(t, uint8(3), pallet)
	assert.Equal(t, uint8(5), idx)
}

func TestModuleErrorIndex_NotModule(t *testing.T) {
	fields := []*field{{Name: "dispatch_error", Value: "BadOrigin"}}
	_, _, ok := moduleErrorIndex(fields)
	assert.False(t, ok)
	assert.True(t, strings.HasPrefix(describeFields(fields), "extrinsic failed: "))

	_, _, ok = moduleErrorIndex(nil)
	assert.False(t, ok)
}
