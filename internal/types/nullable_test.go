package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchRecipeRequestImage(t *testing.T) {
	tests := []struct {
		body string
		set  bool
		null bool
		ptr  *string
	}{
		{`{}`, false, false, nil},
		{`{"image": null}`, true, true, nil},
		{`{"image": "recipes/a.jpg"}`, true, false, strPtr("recipes/a.jpg")},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var req PatchRecipeRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.set, req.Image.Set)
			assert.Equal(t, tt.null, req.Image.Null)
			assert.Equal(t, tt.ptr, req.Image.Ptr())
		})
	}
}

func TestPatchRecipeRequestNullFields(t *testing.T) {
	var req PatchRecipeRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title": null, "cooking_time": 30}`), &req))

	assert.True(t, req.Title.IsNull())
	assert.Nil(t, req.Title.Ptr())
	assert.False(t, req.CookingTime.IsNull())
	require.NotNil(t, req.CookingTime.Ptr())
	assert.Equal(t, 30, *req.CookingTime.Ptr())
	assert.False(t, req.Ingredients.Set)
	assert.False(t, req.Ingredients.IsNull())
}

func TestNullableRejectsWrongType(t *testing.T) {
	var req PatchRecipeRequest
	assert.Error(t, json.Unmarshal([]byte(`{"image": 12}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"cooking_time": "soon"}`), &req))
}

func TestNullableMarshal(t *testing.T) {
	out, err := json.Marshal(struct {
		A Nullable[int] `json:"a"`
		B Nullable[int] `json:"b"`
	}{A: Nullable[int]{Set: true, Value: 4}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 4, "b": null}`, string(out))
}

func strPtr(s string) *string { return &s }
