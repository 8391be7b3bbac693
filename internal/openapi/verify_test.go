package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastertools/modelschemas/internal/aggregate"
)

func TestVerify(t *testing.T) {
	require.NoError(t, Verify(testRegistry(t)))
	require.NoError(t, Verify(aggregate.NewRegistry()))
}

func TestVerifyDanglingReference(t *testing.T) {
	reg := testRegistry(t)
	reg.Put(aggregate.Entry{
		Name:   "Order",
		Schema: mustParse(t, `{"properties": {"buyer": {"$ref": "#/components/schemas/Customer"}}}`),
		Model:  "Order",
		Origin: aggregate.OriginModel,
	})

	err := Verify(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema Order")
}

func TestVerifyNamesNeedingEscapes(t *testing.T) {
	reg := testRegistry(t)
	for _, name := range []string{"50%off", "a b", "a/b~c", "café"} {
		reg.Put(aggregate.Entry{
			Name:   name,
			Schema: mustParse(t, `{"type": "string"}`),
			Model:  name,
			Origin: aggregate.OriginModel,
		})
	}

	require.NoError(t, Verify(reg))
}

func TestFragment(t *testing.T) {
	assert.Equal(t, "#/components/schemas/User", fragment("User"))
	assert.Equal(t, "#/components/schemas/50%25off", fragment("50%off"))
	assert.Equal(t, "#/components/schemas/a~1b~0c", fragment("a/b~c"))
	assert.Equal(t, "#/components/schemas/a%20b", fragment("a b"))
}

func TestPointer(t *testing.T) {
	assert.Equal(t, "#/components/schemas/User", Pointer("User"))
	assert.Equal(t, "#/components/schemas/a~1b~0c", Pointer("a/b~c"))
}
