package audit

import (
	"context"
	"encoding/json"
	"reflect"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cresszm/cress/internal/models"
	"github.com/cresszm/cress/pkg/logger"
	"github.com/cresszm/cress/pkg/metrics"
)

// Loggable marks models whose writes produce activity-log rows.
type Loggable interface {
	LogName() string
}

// Actor identifies who is performing the current request, plus the request
// metadata captured into each audit row.
type Actor struct {
	ID        uint
	Type      string // "user"
	IP        string
	UserAgent string
	Location  string
	BatchUUID string
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// Recorder writes audit rows from gorm lifecycle callbacks. Failures are
// logged and counted but never passed back into the primary write.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Register attaches the recorder to the connection's lifecycle, once.
func (r *Recorder) Register(db *gorm.DB) error {
	if err := db.Callback().Create().After("gorm:create").Register("cress:audit_create", r.afterCreate); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("cress:audit_update", r.afterUpdate); err != nil {
		return err
	}
	return db.Callback().Delete().After("gorm:delete").Register("cress:audit_delete", r.afterDelete)
}

func (r *Recorder) afterCreate(tx *gorm.DB) { r.record(tx, "created") }
func (r *Recorder) afterUpdate(tx *gorm.DB) { r.record(tx, "updated") }
func (r *Recorder) afterDelete(tx *gorm.DB) { r.record(tx, "deleted") }

func (r *Recorder) record(tx *gorm.DB, event string) {
	if tx.Error != nil || tx.Statement == nil || tx.Statement.Schema == nil {
		return
	}
	subject := loggableOf(tx)
	if subject == nil {
		return
	}
	if event != "created" && tx.RowsAffected == 0 {
		return
	}

	entry := models.ActivityLog{
		LogName:     subject.LogName(),
		Description: event + " " + subject.LogName(),
		SubjectType: subject.LogName(),
		SubjectID:   primaryKey(tx),
		Event:       event,
		Properties:  properties(tx, event),
	}
	if actor, ok := ActorFrom(tx.Statement.Context); ok {
		entry.CauserID = actor.ID
		entry.CauserType = actor.Type
		entry.IPAddress = actor.IP
		entry.UserAgent = actor.UserAgent
		entry.Location = actor.Location
		entry.BatchUUID = actor.BatchUUID
	}

	if err := r.db.Session(&gorm.Session{NewDB: true}).Create(&entry).Error; err != nil {
		logger.Warn("audit write failed",
			zap.String("subject", entry.SubjectType),
			zap.String("event", event),
			zap.Error(err))
		metrics.ObserveAuditWrite(false)
		return
	}
	metrics.ObserveAuditWrite(true)
}

// loggableOf returns the Loggable behind the statement, or nil for models
// that are not audited (including ActivityLog itself).
func loggableOf(tx *gorm.DB) Loggable {
	if l, ok := tx.Statement.Model.(Loggable); ok {
		return l
	}
	if l, ok := tx.Statement.Dest.(Loggable); ok {
		return l
	}
	return nil
}

func primaryKey(tx *gorm.DB) uint {
	field := tx.Statement.Schema.PrioritizedPrimaryField
	if field == nil {
		return 0
	}
	rv := tx.Statement.ReflectValue
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return 0
	}
	v, zero := field.ValueOf(tx.Statement.Context, rv)
	if zero {
		return 0
	}
	switch id := v.(type) {
	case uint:
		return id
	case int64:
		return uint(id)
	case uint64:
		return uint(id)
	}
	return 0
}

// properties captures the written attributes: the update map for partial
// updates, a full snapshot for creates, nothing for deletes.
func properties(tx *gorm.DB, event string) map[string]any {
	if event == "deleted" {
		return nil
	}
	var src any
	if m, ok := tx.Statement.Dest.(map[string]interface{}); ok {
		src = m
	} else if tx.Statement.Dest != nil {
		src = tx.Statement.Dest
	} else {
		src = tx.Statement.Model
	}
	raw, err := json.Marshal(src)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	for _, secret := range []string{"password", "password_hash", "token"} {
		delete(out, secret)
	}
	return out
}
