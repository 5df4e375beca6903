package profile

import (
	"bytes"
	"errors"
	"testing"

	"fjacquet/mpr-recon/internal/models"
	"fjacquet/mpr-recon/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, List(&store.MockProfileStore{}, &out))
	assert.Contains(t, out.String(), "No profiles found")

	repo := &store.MockProfileStore{Profiles: []store.Profile{
		{Name: "razorpay", Role: models.RoleMPR, Description: "Razorpay MPR", Mapping: map[string]string{"transaction_id": "Payment ID", "amount": "Amount"}},
	}}
	out.Reset()
	require.NoError(t, List(repo, &out))
	assert.Contains(t, out.String(), "razorpay")
	assert.Contains(t, out.String(), "Razorpay MPR")

	repo.LoadError = errors.New("disk on fire")
	assert.Error(t, List(repo, &out))
}

func TestShow(t *testing.T) {
	repo := &store.MockProfileStore{Profiles: []store.Profile{
		{Name: "hdfc", Role: models.RoleBank, Mapping: map[string]string{"utr": "Chq./Ref.No.", "amount": "Deposit Amt."}},
	}}

	var out bytes.Buffer
	require.NoError(t, Show(repo, "HDFC", &out))
	s := out.String()
	assert.Contains(t, s, "hdfc (bank)")
	assert.Contains(t, s, "Chq./Ref.No.")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("amount")), bytes.Index(out.Bytes(), []byte("utr")))

	err := Show(repo, "missing", &out)
	assert.ErrorIs(t, err, store.ErrProfileNotFound)
}

func TestSave(t *testing.T) {
	repo := &store.MockProfileStore{}

	var out bytes.Buffer
	err := Save(repo, "ledger", "internal", "ERP export", []string{"Transaction_ID = Order No", "amount=Amt"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `Saved profile "ledger"`)

	require.Len(t, repo.Profiles, 1)
	p := repo.Profiles[0]
	assert.Equal(t, models.RoleInternal, p.Role)
	assert.Equal(t, "Order No", p.Mapping["transaction_id"])
	assert.Equal(t, "Amt", p.Mapping["amount"])

	tests := []struct {
		name string
		role string
		maps []string
	}{
		{"unknown role", "gateway", []string{"amount=Amt"}},
		{"no mappings", "mpr", nil},
		{"malformed mapping", "mpr", []string{"amount"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Save(repo, "x", tt.role, "", tt.maps, &bytes.Buffer{}))
		})
	}

	repo.SaveError = errors.New("read-only")
	assert.Error(t, Save(repo, "ledger", "internal", "", []string{"amount=Amt"}, &bytes.Buffer{}))
}

func TestCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range Cmd.Commands() {
		names[c.Name()] = true
	}
	for _, n := range []string{"list", "show", "save", "delete"} {
		assert.True(t, names[n], n)
	}
}
