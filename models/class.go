package models

import "time"

// ClassItem is the bookable hobby class as seen by the booking flow.
type ClassItem struct {
	ID                 string          `bson:"id" json:"id"`
	Name               string          `bson:"name" json:"name"`
	BasePricePerPerson float64         `bson:"basePricePerPerson" json:"basePricePerPerson"`
	Currency           string          `bson:"currency,omitempty" json:"currency,omitempty"`
	Equipment          []EquipmentItem `bson:"equipment,omitempty" json:"equipment,omitempty"`
}

func (c ClassItem) Clone() ClassItem {
	c.Equipment = append([]EquipmentItem(nil), c.Equipment...)
	return c
}

// FindEquipment looks up one of the class's rentable equipment items.
func (c ClassItem) FindEquipment(id string) (EquipmentItem, bool) {
	for _, e := range c.Equipment {
		if e.ID == id {
			return e, true
		}
	}
	return EquipmentItem{}, false
}

type EquipmentItem struct {
	ID          string  `bson:"id" json:"id"`
	Name        string  `bson:"name" json:"name"`
	Price       float64 `bson:"price" json:"price"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
}

// TimeSlot is one scheduled occurrence of a class. It is immutable once fetched.
type TimeSlot struct {
	ID             string    `bson:"id" json:"id"`
	ClassID        string    `bson:"classId" json:"classId"`
	Time           string    `bson:"time" json:"time"`
	Date           time.Time `bson:"date" json:"date"`
	Available      bool      `bson:"available" json:"available"`
	SpotsRemaining int       `bson:"spotsRemaining" json:"spotsRemaining"`
}

func (t TimeSlot) IsFullyBooked() bool {
	return t.SpotsRemaining <= 0
}

// CouponCode is a validated promotional code.
type CouponCode struct {
	Code        string     `bson:"code" json:"code"`
	Percentage  int        `bson:"percentage" json:"percentage"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Active      bool       `bson:"active" json:"-"`
	ExpiresAt   *time.Time `bson:"expiresAt,omitempty" json:"-"`
}
