package schema

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCheck(t *testing.T, n *Node, rows Rows) ([]string, error) {
	t.Helper()
	return n.check(rows)
}

func TestWithBoolCheck_FalsyReturnsMeetUnchanged(t *testing.T) {
	meet := []string{"CREATE TABLE x(id INTEGER)", "CREATE INDEX x_id ON x(id)"}
	n := WithBoolCheck("x", "check", meet...)

	got, err := runCheck(t, n, boolRow(false))
	require.NoError(t, err)
	assert.Equal(t, meet, got)
}

func TestWithBoolCheck_CapturesCopy(t *testing.T) {
	meet := []string{"create x"}
	n := WithBoolCheck("x", "check", meet...)
	meet[0] = "drop x"

	got, err := runCheck(t, n, boolRow(false))
	require.NoError(t, err)
	assert.Equal(t, []string{"create x"}, got)

	// Mutating a returned slice does not leak into the next check.
	got[0] = "mutated"
	again, err := runCheck(t, n, boolRow(false))
	require.NoError(t, err)
	assert.Equal(t, []string{"create x"}, again)
}

func TestWithBoolCheck_TruthyIsSatisfied(t *testing.T) {
	n := WithBoolCheck("x", "check", "create x")

	got, err := runCheck(t, n, boolRow(true))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWithBoolCheck_Values(t *testing.T) {
	tests := []struct {
		name  string
		value any
		met   bool
	}{
		{"bool true", true, true},
		{"bool false", false, false},
		{"int64 one", int64(1), true},
		{"int64 zero", int64(0), false},
		{"int64 other", int64(7), true},
		{"int", 1, true},
		{"int32 zero", int32(0), false},
		{"int8", int8(1), true},
		{"int16 zero", int16(0), false},
		{"uint", uint(1), true},
		{"uint8 zero", uint8(0), false},
		{"uint16", uint16(1), true},
		{"uint32 zero", uint32(0), false},
		{"uint64", uint64(1), true},
		{"float32 zero", float32(0), false},
		{"float32", float32(0.5), true},
		{"float", float64(1), true},
		{"bytes 1", []byte("1"), true},
		{"bytes f", []byte("f"), false},
		{"string true", "true", true},
		{"string FALSE", "FALSE", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := WithBoolCheck("x", "check", "create x")
			got, err := runCheck(t, n, boolRow(tt.value))
			require.NoError(t, err)
			assert.Equal(t, tt.met, len(got) == 0)
		})
	}
}

func TestWithBoolCheck_RejectsBadShapes(t *testing.T) {
	tests := []struct {
		name    string
		rows    *fakeRows
		wantErr string
	}{
		{"zero rows", newRows([]string{"ok"}), "got none"},
		{"two rows", newRows([]string{"ok"}, []any{true}, []any{true}), "got more"},
		{"two columns", newRows([]string{"a", "b"}, []any{true, true}), "expected 1 column"},
		{"null", boolRow(nil), "NULL"},
		{"text", boolRow("maybe"), `"maybe"`},
		{"struct", boolRow(struct{}{}), "struct {}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := WithBoolCheck("x", "check", "create x")
			_, err := runCheck(t, n, tt.rows)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWithBoolCheck_ZeroRowsIsCheckErrorOnConverge(t *testing.T) {
	db := newFakeDB()
	db.onQuery("check", func(*fakeDB) (Rows, error) { return newRows([]string{"ok"}), nil })

	_, err := quietConverger(false).Converge(t.Context(), WithBoolCheck("x", "check", "create x"), db)
	require.Error(t, err)
	assert.True(t, IsCheckError(err))
	assert.Equal(t, 0, db.count("exec: "))
}

func TestRequire_PreservesOrder(t *testing.T) {
	a := New("a", "qa", nil)
	b := New("b", "qb", nil)
	c := New("c", "qc", nil)

	root := New("root", "q", nil).Require(a).Require(b).Require(c)

	require.Len(t, root.Requires(), 3)
	assert.Equal(t, []*Node{a, b, c}, root.Requires())
	assert.Equal(t, "q", root.CheckQuery())
}

func TestNode_LogValue(t *testing.T) {
	n := New("users", "q", nil).Require(New("orgs", "q", nil))
	v := n.LogValue()

	require.Equal(t, slog.KindGroup, v.Kind())
	attrs := v.Group()
	require.Len(t, attrs, 2)
	assert.Equal(t, "users", attrs[0].Value.String())
	assert.Equal(t, int64(1), attrs[1].Value.Int64())
}

func TestStateError_Format(t *testing.T) {
	cause := errors.New("boom")

	check := checkError("users", cause)
	assert.Equal(t, "error checking schema state for 'users': boom", check.Error())
	assert.True(t, IsCheckError(check))
	assert.False(t, IsMeetError(check))

	meet := meetError("users", cause)
	assert.Equal(t, "error meeting schema state for 'users': boom", meet.Error())
	assert.True(t, IsMeetError(meet))
	assert.ErrorIs(t, meet, cause)
}

func TestStateError_Wrapped(t *testing.T) {
	err := errors.Join(errors.New("context"), meetError("x", ErrVerificationFailed))
	assert.True(t, IsMeetError(err))
	assert.False(t, IsCheckError(errors.New("plain")))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "ok", StateOk.String())
	assert.Equal(t, "changed", StateChanged.String())
	assert.Equal(t, "unknown", State(9).String())
}
