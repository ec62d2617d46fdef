package auth

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr error
	}{
		{in: "7", want: 7},
		{in: "0", wantErr: ErrInvalidID},
		{in: "-3", wantErr: ErrInvalidID},
		{in: "abc", wantErr: ErrInvalidID},
		{in: "", wantErr: ErrInvalidID},
	}

	for _, tt := range tests {
		got, err := ParseID(tt.in)
		assert.Equal(t, tt.wantErr, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := hashPassword("Str0ng!pass", bcrypt.MinCost)

	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!pass", hash)
	assert.True(t, hashMatchesPassword(hash, "Str0ng!pass"))
	assert.False(t, hashMatchesPassword(hash, "str0ng!pass"))
}

func TestAccount_Claim(t *testing.T) {
	acc := &Account{ID: 4, FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.com", PasswordHash: "h", Role: Employee}

	assert.Equal(t, Claim{ID: 4, FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.com", Role: Employee}, acc.Claim())
}

func TestRole_Elevated(t *testing.T) {
	assert.False(t, Customer.Elevated())
	assert.True(t, Employee.Elevated())
	assert.True(t, Admin.Elevated())
	assert.False(t, Role(9).Elevated())
}

func TestRole_Text(t *testing.T) {
	for _, r := range []Role{Customer, Employee, Admin} {
		b, err := json.Marshal(r)
		require.NoError(t, err)

		var back Role
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, r, back)
	}

	_, err := json.Marshal(Role(9))
	assert.Error(t, err)

	var r Role
	assert.Error(t, json.Unmarshal([]byte(`"Client"`), &r))
}
