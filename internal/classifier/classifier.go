// Package classifier assigns dose records to procedure categories using a rule table.
package classifier

import (
	"radiologi/xa-dose/internal/logging"
	"radiologi/xa-dose/internal/models"
	"radiologi/xa-dose/internal/rules"

	gocache "github.com/patrickmn/go-cache"
)

// Classifier resolves descriptions against one immutable rule table. It is safe for
// concurrent use.
type Classifier struct {
	table  *rules.Table
	cache  *gocache.Cache
	logger logging.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithCache memoises results by description. Tables never change after loading, so
// entries never expire.
func WithCache() Option {
	return func(c *Classifier) {
		c.cache = gocache.New(gocache.NoExpiration, 0)
	}
}

// New creates a classifier over table.
func New(table *rules.Table, logger logging.Logger, opts ...Option) *Classifier {
	if logger == nil {
		logger = logging.GetLogger()
	}
	c := &Classifier{
		table:  table,
		logger: logger.WithField(logging.FieldTable, table.ID()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Table returns the rule table the classifier resolves against.
func (c *Classifier) Table() *rules.Table {
	return c.table
}

// Classify returns the category of description, or the unmapped result.
func (c *Classifier) Classify(description string) rules.Result {
	if c.cache != nil {
		if cached, ok := c.cache.Get(description); ok {
			return cached.(rules.Result)
		}
	}

	result := c.table.Resolve(description)
	if result.Mapped {
		c.logger.Debug("Description mapped",
			logging.Field{Key: logging.FieldDescription, Value: description},
			logging.Field{Key: logging.FieldRule, Value: result.Index + 1},
			logging.Field{Key: logging.FieldCategory, Value: result.Label})
	} else {
		c.logger.Debug("Description unmapped",
			logging.Field{Key: logging.FieldDescription, Value: description})
	}

	if c.cache != nil {
		c.cache.SetDefault(description, result)
	}
	return result
}

// ClassifyRecord classifies the description of record. It fails only when the record
// has no description field.
func (c *Classifier) ClassifyRecord(record models.DoseRecord) (rules.Result, error) {
	description, err := record.Describe()
	if err != nil {
		return rules.Result{}, err
	}
	return c.Classify(description), nil
}

// Explain returns the rule-by-rule evaluation of description. It bypasses the cache.
func (c *Classifier) Explain(description string) rules.Trace {
	return c.table.Explain(description)
}

// CachedDescriptions returns the number of memoised descriptions, 0 without a cache.
func (c *Classifier) CachedDescriptions() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.ItemCount()
}
