package schema_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rack "github.com/raxodb/rack"
	"github.com/raxodb/rack/schema"
	"github.com/raxodb/rack/value"
)

func newRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	return schema.NewRegistry()
}

func TestRegisterBuiltinTag(t *testing.T) {
	r := newRegistry(t)
	assert.True(t, r.Has(schema.TagType))

	sch, err := r.SchemaFor(schema.TagType)
	require.NoError(t, err)
	_, ok := sch.FieldByName("data")
	assert.True(t, ok)
	_, ok = sch.FieldByName("fk_data")
	assert.True(t, ok)
}

func TestRegisterDuplicateType(t *testing.T) {
	r := newRegistry(t)
	_, err := r.Register("book", schema.String("title"))
	require.NoError(t, err)

	_, err = r.Register("book", schema.String("title"))
	require.Error(t, err)
	assert.True(t, rack.IsSchemaError(err))
}

func TestRegisterDuplicateField(t *testing.T) {
	r := newRegistry(t)
	_, err := r.Register("book", schema.String("title"), schema.String("title"))
	require.Error(t, err)
}

func TestRegisterFKCollision(t *testing.T) {
	r := newRegistry(t)
	// fk_author forbids a sibling field literally named "author".
	_, err := r.Register("book", schema.String("author"), schema.FK("fk_author"))
	require.Error(t, err)
}

func TestAllRegisteredTypesOrder(t *testing.T) {
	r := newRegistry(t)
	_, err := r.Register("author", schema.String("name"))
	require.NoError(t, err)
	_, err = r.Register("book", schema.String("title"), schema.FK("fk_author"))
	require.NoError(t, err)

	assert.Equal(t, []string{schema.TagType, "author", "book"}, r.AllRegisteredTypes())

	idx, ok := r.IndexOf("book")
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = r.IndexOf("missing")
	assert.False(t, ok)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := newRegistry(t)
	_, err := r.Register("book",
		schema.String("title"),
		schema.Int("year").Optional(),
		schema.FK("fk_author"),
	)
	require.NoError(t, err)

	e := schema.New("book", value.NumericIdent(7), map[string]any{
		"title":     "Dune",
		"year":      int64(1965),
		"fk_author": "author_1",
	})

	wire, err := schema.Encode(r, e)
	require.NoError(t, err)
	assert.Equal(t, "book", wire["type"])
	assert.Equal(t, int64(7), wire["id"])

	decoded, err := schema.Decode(r, wire)
	require.NoError(t, err)

	// decode(encode(e)) == e, ignoring the projected (never-serialized) view.
	if diff := cmp.Diff(e, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeMissingRequiredField(t *testing.T) {
	r := newRegistry(t)
	_, err := r.Register("book", schema.String("title"))
	require.NoError(t, err)

	e := schema.New("book", value.NumericIdent(1), map[string]any{})
	_, err = schema.Encode(r, e)
	require.Error(t, err)
}

func TestEncodeAutoIdentRejected(t *testing.T) {
	r := newRegistry(t)
	_, err := r.Register("book", schema.String("title"))
	require.NoError(t, err)

	e := schema.New("book", value.Auto{}, map[string]any{"title": "Dune"})
	_, err = schema.Encode(r, e)
	require.Error(t, err)
}

func TestDecodeRejectsUnknownField(t *testing.T) {
	r := newRegistry(t)
	_, err := r.Register("book", schema.String("title"))
	require.NoError(t, err)

	wire := map[string]any{"type": "book", "id": float64(1), "title": "Dune", "author": "view leaked"}
	_, err = schema.Decode(r, wire)
	require.Error(t, err)
}

func TestDecodeAppliesDefault(t *testing.T) {
	r := newRegistry(t)
	_, err := r.Register("book", schema.String("title"), schema.Int("year").Default(int64(2000)))
	require.NoError(t, err)

	wire := map[string]any{"type": "book", "id": float64(1), "title": "Dune"}
	decoded, err := schema.Decode(r, wire)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), decoded.Fields["year"])
}

func TestDecodeTagNameIdent(t *testing.T) {
	r := newRegistry(t)
	wire := map[string]any{"type": schema.TagType, "id": "hot", "data": "x", "fk_data": nil}
	decoded, err := schema.Decode(r, wire)
	require.NoError(t, err)
	assert.Equal(t, value.NameIdent("hot"), decoded.Ident)
}

func TestFieldsOfOrder(t *testing.T) {
	r := newRegistry(t)
	_, err := r.Register("book", schema.String("title"), schema.Int("year"))
	require.NoError(t, err)
	sch, err := r.SchemaFor("book")
	require.NoError(t, err)

	e := schema.New("book", value.NumericIdent(1), map[string]any{"title": "Dune", "year": int64(1965)})
	fvs := schema.FieldsOf(sch, e)
	require.Len(t, fvs, 2)
	assert.Equal(t, "title", fvs[0].Name)
	assert.Equal(t, "year", fvs[1].Name)
}

func TestFieldLiteral(t *testing.T) {
	r := newRegistry(t)
	_, err := r.Register("book", schema.String("title"))
	require.NoError(t, err)
	sch, err := r.SchemaFor("book")
	require.NoError(t, err)

	e := schema.New("book", value.NumericIdent(1), map[string]any{"title": "Dune"})
	v, ok := schema.FieldLiteral(sch, e, "title")
	require.True(t, ok)
	assert.Equal(t, "Dune", v.String())

	_, ok = schema.FieldLiteral(sch, e, "author")
	assert.False(t, ok)
}

func TestNewTag(t *testing.T) {
	tag := schema.NewTag("hot", "x", nil)
	assert.Equal(t, schema.TagType, tag.Type)
	assert.Equal(t, value.NameIdent("hot"), tag.Ident)
	assert.Equal(t, "x", tag.Fields["data"])
}
