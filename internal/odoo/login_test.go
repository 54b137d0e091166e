package odoo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_EmployeeIsCached(t *testing.T) {
	object := &fakeCaller{replies: map[string]interface{}{
		ModelEmployee: []interface{}{employeeRecord(10, 2, 4, 0)},
	}}
	login := newTestSession(t, object).AsSelf()

	for i := 0; i < 3; i++ {
		emp, err := login.Employee()
		require.NoError(t, err)
		assert.Equal(t, int64(10), emp.ID)
	}
	assert.Equal(t, 1, object.callsTo(ModelEmployee))
	assert.Equal(t, 0, object.callsTo(ModelUser))
}

func TestLogin_Impersonate(t *testing.T) {
	object := &fakeCaller{replies: map[string]interface{}{
		ModelUser:     []interface{}{map[string]interface{}{"id": int64(8), "email": "luis@example.com"}},
		ModelEmployee: []interface{}{employeeRecord(20, 8, 4, 0)},
	}}
	login := newTestSession(t, object).Impersonate("luis@example.com")

	assert.True(t, login.Impersonated())
	assert.Equal(t, "luis@example.com", login.Identity())

	emp, err := login.Employee()
	require.NoError(t, err)
	assert.Equal(t, int64(20), emp.ID)

	employeeCall := object.calls[len(object.calls)-1]
	assert.Equal(t, []interface{}{Domain{[]interface{}{"user_id", "=", int64(8)}}}, employeeCall.args[5])

	to, err := login.RecipientEmail()
	require.NoError(t, err)
	assert.Equal(t, "luis@example.com", to)
}

func TestLogin_UnknownEmail(t *testing.T) {
	login := newTestSession(t, &fakeCaller{}).Impersonate("ghost@example.com")

	_, err := login.Employee()
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestLogin_SelfRecipient(t *testing.T) {
	object := &fakeCaller{replies: map[string]interface{}{
		ModelUser: []interface{}{map[string]interface{}{"id": int64(2), "email": "admin@example.com"}},
	}}
	login := newTestSession(t, object).AsSelf()

	assert.False(t, login.Impersonated())
	assert.Equal(t, "admin", login.Identity())

	to, err := login.RecipientEmail()
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", to)
}
