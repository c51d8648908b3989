// Package enrich composes extraction, classification, and reference resolution
// into the single decoded-object -> Record step of the pipeline
package enrich

import (
	"fmt"
	"time"

	"chatlake/internal/core/classify"
	"chatlake/internal/core/extjson"
	"chatlake/internal/core/normalize"
	"chatlake/internal/core/rulepack"
	"chatlake/internal/services/ingest/domain"
	refdomain "chatlake/internal/services/refdata/domain"
)

// phoneFlatKeys are tried in order on the top-level object
var phoneFlatKeys = []string{
	"remoteJid", "from", "to", "sender", "chatId",
	"participant", "jid", "phone", "number", "contact",
}

// phoneKeyKeys are tried in order inside the "key" sub-object
var phoneKeyKeys = []string{"remoteJid", "participant", "from", "to"}

// phoneParents and phoneParentKeys cover nested carrier objects;
// the first parent yielding a usable value wins, later parents never override
var phoneParents = []string{"message", "chat", "contact", "sender"}
var phoneParentKeys = []string{"jid", "phone", "id", "number"}

// instanceFKKeys and broadcastFKKeys are the accepted reference spellings
var instanceFKKeys = []string{"instance", "instanceId", "instance_id"}
var broadcastFKKeys = []string{"broadCastId", "broadcast_id", "broadcast"}

// timestampKeys are tried in order for the record timestamp
var timestampKeys = []string{"createdAt", "timestamp"}

// Enricher turns decoded candidate objects into persisted records.
// It never fails: absent or malformed fields degrade to NULLs and sentinels
type Enricher struct {
	cls  *classify.Classifier
	refs refdomain.Maps
}

// New builds an Enricher over the embedded rule pack
func New(refs refdomain.Maps) (*Enricher, error) {
	p, err := rulepack.Load()
	if err != nil {
		return nil, err
	}
	return NewWithPack(p, refs), nil
}

// NewWithPack builds an Enricher over an already-compiled pack
func NewWithPack(p *rulepack.Pack, refs refdomain.Maps) *Enricher {
	return &Enricher{cls: classify.New(p), refs: refs}
}

// Enrich produces the full Record for one decoded object
func (e *Enricher) Enrich(obj extjson.Object) domain.Record {
	rec := domain.Record{
		Type:   domain.UnknownValue,
		Status: domain.UnknownValue,
	}

	if id, ok := extjson.ID(obj, "_id"); ok {
		rec.MessageID = id
	}

	rec.Direction = domain.DirectionIncoming
	if extjson.Flag(obj, "fromMe") {
		rec.Direction = domain.DirectionOutgoing
	}

	if t := extjson.Scalar(obj, "type"); t != "" {
		rec.Type = t
	}
	if s := extjson.Scalar(obj, "status"); s != "" {
		rec.Status = s
	}

	rec.Body = extjson.Str(obj, "body")
	rec.BodyLength = normalize.BodyLength(rec.Body)
	rec.WordCount = normalize.WordCount(rec.Body)
	rec.HasQuestion = normalize.HasQuestion(rec.Body)
	rec.HasEmoji = normalize.HasEmoji(rec.Body)
	rec.HasLink = normalize.HasLink(rec.Body)

	rec.IsDeleted = extjson.Flag(obj, "isDeleted")
	rec.IsGroup = extjson.Flag(obj, "isGroup")

	rec.IsBroadcast = extjson.Flag(obj, "isBroadCast")
	if !rec.IsBroadcast {
		_, rec.IsBroadcast = extjson.ForeignKey(obj, broadcastFKKeys...)
	}

	if phone, ok := extractPhone(obj); ok {
		rec.CustomerPhone = &phone
	}

	e.resolveReferences(obj, &rec)

	labels := e.cls.Classify(rec.Body)
	rec.Category = labels.Category
	rec.Sentiment = labels.Sentiment
	rec.Urgency = labels.Urgency
	rec.Intent = labels.Intent

	e.stampTemporal(obj, &rec)
	return rec
}

// resolveReferences maps the instance foreign key through the reference
// tables; a miss at any hop leaves the name at the Unknown sentinel
func (e *Enricher) resolveReferences(obj extjson.Object, rec *domain.Record) {
	rec.InstanceName = domain.UnknownName
	rec.CompanyName = domain.UnknownName

	instanceID, ok := extjson.ForeignKey(obj, instanceFKKeys...)
	if !ok {
		return
	}
	rec.InstanceID = &instanceID

	in, ok := e.refs.Instance(instanceID)
	if !ok {
		return
	}
	if in.Name != "" {
		rec.InstanceName = in.Name
	}
	if in.CompanyID == "" {
		return
	}
	companyID := in.CompanyID
	rec.CompanyID = &companyID
	if c, ok := e.refs.Company(companyID); ok && c.Name != "" {
		rec.CompanyName = c.Name
	}
}

// stampTemporal decodes the timestamp and derives the bucket columns.
// All temporal columns are NULL together when no source field decodes
func (e *Enricher) stampTemporal(obj extjson.Object, rec *domain.Record) {
	var ts time.Time
	found := false
	for _, key := range timestampKeys {
		v, ok := obj[key]
		if !ok {
			continue
		}
		if t, ok := extjson.Timestamp(v); ok {
			ts = t
			found = true
			break
		}
	}
	if !found {
		return
	}

	rec.Timestamp = &ts
	date := ts.Format("2006-01-02")
	rec.Date = &date
	hour := ts.Hour()
	rec.Hour = &hour
	dow := ts.Weekday().String()
	rec.DayOfWeek = &dow
	month := ts.Format("2006-01")
	rec.Month = &month
	week := weekBucket(ts)
	rec.Week = &week
}

// weekBucket renders the Monday-start week-of-year bucket, zero padded,
// with days before the year's first Monday falling in week 00
func weekBucket(t time.Time) string {
	mon0 := (int(t.Weekday()) + 6) % 7
	week := (t.YearDay() - 1 - mon0 + 7) / 7
	return fmt.Sprintf("%d-W%02d", t.Year(), week)
}

// extractPhone walks the location chain: flat fields, then the key
// sub-object, then nested parent objects. The first non-empty raw value is
// cleaned; a value that cleans to empty rejects the whole extraction
func extractPhone(obj extjson.Object) (string, bool) {
	raw, ok := extjson.FirstNonEmpty(
		func() (string, bool) { return firstStr(obj, phoneFlatKeys), true },
		func() (string, bool) { return firstStr(extjson.Sub(obj, "key"), phoneKeyKeys), true },
		func() (string, bool) {
			for _, parent := range phoneParents {
				if v := firstStr(extjson.Sub(obj, parent), phoneParentKeys); v != "" {
					return v, true
				}
			}
			return "", false
		},
	)
	if !ok || raw == "" {
		return "", false
	}
	phone := normalize.CleanPhone(raw)
	return phone, phone != ""
}

// firstStr returns the first non-empty string value among keys
func firstStr(obj extjson.Object, keys []string) string {
	for _, k := range keys {
		if s := extjson.Str(obj, k); s != "" {
			return s
		}
	}
	return ""
}
