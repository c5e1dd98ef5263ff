package audit

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cresszm/cress/internal/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	require.NoError(t, NewRecorder(db).Register(db))
	return db
}

func logsFor(t *testing.T, db *gorm.DB, event, logName string) []models.ActivityLog {
	t.Helper()
	var logs []models.ActivityLog
	require.NoError(t, db.Where("event = ? AND log_name = ?", event, logName).Find(&logs).Error)
	return logs
}

func TestCreateWritesOneLog(t *testing.T) {
	db := setupDB(t)

	user := models.User{Name: "Chipo", Email: "chipo@example.com", Role: models.RoleUser, Status: models.StatusPending}
	require.NoError(t, user.SetPassword("secret-pass"))
	require.NoError(t, db.Create(&user).Error)

	logs := logsFor(t, db, "created", "user")
	require.Len(t, logs, 1)
	assert.Equal(t, "created user", logs[0].Description)
	assert.Equal(t, "user", logs[0].SubjectType)
	assert.Equal(t, user.ID, logs[0].SubjectID)
}

func TestUpdateLogCarriesChangedAttributes(t *testing.T) {
	db := setupDB(t)

	user := models.User{Name: "Chipo", Email: "chipo@example.com"}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, db.Model(&user).Updates(map[string]interface{}{"status": models.StatusActive}).Error)

	logs := logsFor(t, db, "updated", "user")
	require.Len(t, logs, 1)
	assert.Equal(t, models.StatusActive, logs[0].Properties["status"])
}

func TestDeleteWritesLogWithoutProperties(t *testing.T) {
	db := setupDB(t)

	contact := models.Contact{UserID: 1, Name: "Bwalya", Phone: "0977000000"}
	require.NoError(t, db.Create(&contact).Error)
	require.NoError(t, db.Delete(&contact).Error)

	logs := logsFor(t, db, "deleted", "contact")
	require.Len(t, logs, 1)
	assert.Empty(t, logs[0].Properties)
}

func TestActorMetadataFlowsIntoLog(t *testing.T) {
	db := setupDB(t)

	actor := Actor{
		ID:        42,
		Type:      "user",
		IP:        "10.1.2.3",
		UserAgent: "test-agent",
		Location:  "Lusaka",
		BatchUUID: "0a3b4e0e-1111-2222-3333-444455556666",
	}
	ctx := WithActor(context.Background(), actor)

	alert := models.Alert{UserID: 42, Name: "Help", Status: models.AlertPending}
	require.NoError(t, db.WithContext(ctx).Create(&alert).Error)

	logs := logsFor(t, db, "created", "alert")
	require.Len(t, logs, 1)
	assert.Equal(t, uint(42), logs[0].CauserID)
	assert.Equal(t, "user", logs[0].CauserType)
	assert.Equal(t, "10.1.2.3", logs[0].IPAddress)
	assert.Equal(t, "test-agent", logs[0].UserAgent)
	assert.Equal(t, "Lusaka", logs[0].Location)
	assert.Equal(t, actor.BatchUUID, logs[0].BatchUUID)
}

func TestSecretsStrippedFromProperties(t *testing.T) {
	db := setupDB(t)

	user := models.User{Name: "Chipo", Email: "chipo@example.com"}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, db.Model(&user).
		Updates(map[string]interface{}{"password_hash": "new-hash", "name": "Chipo M"}).Error)

	logs := logsFor(t, db, "updated", "user")
	require.Len(t, logs, 1)
	assert.NotContains(t, logs[0].Properties, "password_hash")
	assert.Equal(t, "Chipo M", logs[0].Properties["name"])
}

func TestActivityLogItselfIsNotAudited(t *testing.T) {
	db := setupDB(t)

	entry := models.ActivityLog{LogName: "manual", Description: "manual entry", Event: "created"}
	require.NoError(t, db.Create(&entry).Error)

	var total int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Count(&total).Error)
	assert.Equal(t, int64(1), total)
}

func TestNoopUpdateSkipsLog(t *testing.T) {
	db := setupDB(t)

	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", 9999).
		Updates(map[string]interface{}{"status": models.StatusActive}).Error)

	assert.Empty(t, logsFor(t, db, "updated", "user"))
}
