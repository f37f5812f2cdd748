package domain

import "time"

// SegmentConnector says how a segment's conditions combine.
type SegmentConnector string

const (
	SegmentConnectorAll SegmentConnector = "all"
	SegmentConnectorAny SegmentConnector = "any"
)

// SegmentOperator is the comparison applied by a single segment condition.
type SegmentOperator string

const (
	SegmentOperatorEquals         SegmentOperator = "e"
	SegmentOperatorNotEquals      SegmentOperator = "dne"
	SegmentOperatorContains       SegmentOperator = "c"
	SegmentOperatorNotContains    SegmentOperator = "dnc"
	SegmentOperatorGreaterThan    SegmentOperator = "igt"
	SegmentOperatorLessThan       SegmentOperator = "ilt"
	SegmentOperatorIsSet          SegmentOperator = "is"
	SegmentOperatorIsNotSet       SegmentOperator = "ins"
	SegmentOperatorIsTrue         SegmentOperator = "it"
	SegmentOperatorIsFalse        SegmentOperator = "if"
	SegmentOperatorWithinLastDays SegmentOperator = "wld"
)

// Segment is a rule-defined dynamic group of customers. SubOf names a parent
// segment whose rules must also hold.
type Segment struct {
	ID          string
	Name        string
	ContentType string
	Connector   SegmentConnector
	Conditions  []SegmentCondition
	SubOf       string
	CreatedAt   time.Time
}

// SegmentCondition is one rule of a segment. When BrandID is set the rule
// only matches customers that arrived through one of the brand's integrations.
type SegmentCondition struct {
	Field    string          `json:"field"`
	Operator SegmentOperator `json:"operator"`
	Value    string          `json:"value,omitempty"`
	BrandID  string          `json:"brandId,omitempty"`
}

// SegmentPredicate is an evaluated segment ready to be translated into a
// storage query.
type SegmentPredicate struct {
	Connector SegmentConnector
	Terms     []SegmentTerm
	Parent    *SegmentPredicate
}

// SegmentTerm is one evaluated condition. Field is empty for pure brand
// conditions; IntegrationIDs is nil when the condition is not brand scoped.
type SegmentTerm struct {
	Field          string
	Operator       SegmentOperator
	Value          string
	IntegrationIDs *IDSet
}
