package permissions_test

import (
	"testing"

	"toolrent/permissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_EmbeddedFile(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	tests := []struct {
		name      string
		path      string
		method    string
		wantSkip  bool
		wantRoles []string
	}{
		{name: "public search with chi trailing slash", path: "/v1/tools/", method: "GET", wantSkip: true},
		{name: "public detail", path: "/v1/tools/{id}", method: "GET", wantSkip: true},
		{name: "admin only create tool", path: "/v1/tools/", method: "POST", wantRoles: []string{"admin"}},
		{name: "member can book", path: "/v1/bookings/", method: "POST", wantRoles: []string{"member", "admin"}},
		{name: "checkout is admin", path: "/v1/bookings/{id}/checkout", method: "POST", wantRoles: []string{"admin"}},
		{name: "method is case insensitive", path: "/v1/admin/stats", method: "get", wantRoles: []string{"admin"}},
		{name: "unknown route", path: "/v1/unknown", method: "GET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			permission := data.FindPermissions(tt.path, tt.method)

			assert.Equal(t, tt.wantSkip, permission.Skip)
			assert.ElementsMatch(t, tt.wantRoles, permission.Permissions)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := permissions.Parse([]byte(`{"endpoints":`))

	assert.Error(t, err)
}
