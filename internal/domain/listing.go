package domain

import (
	"time"

	"github.com/google/uuid"
)

type Condition int

const (
	ConditionNew Condition = iota + 1
	ConditionLikeNew
	ConditionGood
	ConditionFair
)

var conditionWire = map[Condition]string{
	ConditionNew:     "new",
	ConditionLikeNew: "like_new",
	ConditionGood:    "good",
	ConditionFair:    "fair",
}

var conditionDisplay = map[Condition]string{
	ConditionNew:     "New",
	ConditionLikeNew: "Like New",
	ConditionGood:    "Good",
	ConditionFair:    "Fair",
}

// ParseCondition maps a wire string onto a Condition.
func ParseCondition(s string) (Condition, error) {
	for c, w := range conditionWire {
		if w == s {
			return c, nil
		}
	}
	return 0, &UnknownValueError{Field: "condition", Value: s}
}

func (c Condition) String() string {
	return conditionWire[c]
}

func (c Condition) DisplayName() string {
	return conditionDisplay[c]
}

func (c Condition) Valid() bool {
	_, ok := conditionWire[c]
	return ok
}

func (c Condition) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, &UnknownValueError{Field: "condition", Value: "<unset>"}
	}
	return []byte(c.String()), nil
}

func (c *Condition) UnmarshalText(b []byte) error {
	v, err := ParseCondition(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

type TradeOption int

const (
	TradeInPerson TradeOption = iota + 1
	TradeShipping
	TradeBoth
)

var tradeOptionWire = map[TradeOption]string{
	TradeInPerson: "in_person",
	TradeShipping: "shipping",
	TradeBoth:     "both",
}

var tradeOptionDisplay = map[TradeOption]string{
	TradeInPerson: "Meet in Person",
	TradeShipping: "Shipping",
	TradeBoth:     "Meetup or Shipping",
}

func ParseTradeOption(s string) (TradeOption, error) {
	for t, w := range tradeOptionWire {
		if w == s {
			return t, nil
		}
	}
	return 0, &UnknownValueError{Field: "trade_option", Value: s}
}

func (t TradeOption) String() string {
	return tradeOptionWire[t]
}

func (t TradeOption) DisplayName() string {
	return tradeOptionDisplay[t]
}

func (t TradeOption) Valid() bool {
	_, ok := tradeOptionWire[t]
	return ok
}

func (t TradeOption) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, &UnknownValueError{Field: "trade_option", Value: "<unset>"}
	}
	return []byte(t.String()), nil
}

func (t *TradeOption) UnmarshalText(b []byte) error {
	v, err := ParseTradeOption(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

type Listing struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Condition   Condition   `json:"condition"`
	Price       float64     `json:"price"`
	Location    string      `json:"location"`
	TradeOption TradeOption `json:"trade_option"`
	IsFavorite  bool        `json:"is_favorite"`
	Photos      []string    `json:"photos,omitempty"`
	Seller      Seller      `json:"seller"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (l Listing) Clone() Listing {
	if l.Photos != nil {
		l.Photos = append([]string(nil), l.Photos...)
	}
	return l
}
