package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONArray_Scan(t *testing.T) {
	t.Run("bytes", func(t *testing.T) {
		var arr JSONArray
		require.NoError(t, arr.Scan([]byte(`["Pool","Gym"]`)))
		assert.Equal(t, JSONArray{"Pool", "Gym"}, arr)
	})

	t.Run("string", func(t *testing.T) {
		var arr JSONArray
		require.NoError(t, arr.Scan(`["Garden"]`))
		assert.Equal(t, JSONArray{"Garden"}, arr)
	})

	t.Run("nil", func(t *testing.T) {
		arr := JSONArray{"Pool"}
		require.NoError(t, arr.Scan(nil))
		assert.Nil(t, arr)
	})

	t.Run("unexpected driver type errors", func(t *testing.T) {
		var arr JSONArray
		err := arr.Scan(42)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "int")
	})
}

func TestProperty_ImageURL(t *testing.T) {
	thumb := "https://img.example.com/t.jpg"

	p := Property{ThumbnailURL: &thumb, Images: JSONArray{"https://img.example.com/g.jpg"}}
	assert.Equal(t, thumb, p.ImageURL(), "thumbnail preferred over gallery")

	p = Property{Images: JSONArray{"https://img.example.com/g.jpg"}}
	assert.Equal(t, "https://img.example.com/g.jpg", p.ImageURL())

	empty := ""
	p = Property{ThumbnailURL: &empty}
	assert.Equal(t, "", p.ImageURL())
}
