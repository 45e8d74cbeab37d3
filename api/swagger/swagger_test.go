package swagger

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocPathsAreRelativeToBasePath(t *testing.T) {
	var doc struct {
		BasePath string                     `json:"basePath"`
		Schemes  []string                   `json:"schemes"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))

	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Equal(t, []string{"http", "https"}, doc.Schemes)
	assert.Contains(t, doc.Paths, "/grievances")
	assert.Contains(t, doc.Paths, "/users")
	for path := range doc.Paths {
		assert.False(t, strings.HasPrefix(path, "/api/"), path)
	}
}

func TestDocFollowsConfiguredPrefix(t *testing.T) {
	prev := SwaggerInfo.BasePath
	t.Cleanup(func() { SwaggerInfo.BasePath = prev })

	SwaggerInfo.BasePath = "/icrs/v2"
	var doc struct {
		BasePath string `json:"basePath"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))
	assert.Equal(t, "/icrs/v2", doc.BasePath)
}
