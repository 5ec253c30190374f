package classRepo

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestGetClass(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewMongoClassRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, mt.DB.Name()+".classes", mtest.FirstBatch, bson.D{
			{Key: "id", Value: "class-pottery"},
			{Key: "name", Value: "Wheel Pottery"},
			{Key: "basePricePerPerson", Value: 75.0},
			{Key: "equipment", Value: bson.A{
				bson.D{{Key: "id", Value: "apron"}, {Key: "name", Value: "Apron"}, {Key: "price", Value: 5.0}},
			}},
		}))

		class, err := repo.GetClass(context.Background(), "class-pottery")
		if err != nil {
			t.Fatalf("GetClass: %v", err)
		}
		if class == nil || class.BasePricePerPerson != 75 || len(class.Equipment) != 1 {
			t.Errorf("class = %+v", class)
		}
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewMongoClassRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".classes", mtest.FirstBatch))

		class, err := repo.GetClass(context.Background(), "nope")
		if err != nil || class != nil {
			t.Errorf("class=%+v err=%v", class, err)
		}
	})
}

func TestListTimeSlots(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes the day's slots", func(mt *mtest.T) {
		repo := NewMongoClassRepo(mt.DB)
		ns := mt.DB.Name() + ".time_slots"
		day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "id", Value: "slot-am"},
			{Key: "classId", Value: "class-pottery"},
			{Key: "time", Value: "10:00 AM"},
			{Key: "date", Value: day.Add(10 * time.Hour)},
			{Key: "available", Value: true},
			{Key: "spotsRemaining", Value: 4},
		})
		second := mtest.CreateCursorResponse(0, ns, mtest.NextBatch, bson.D{
			{Key: "id", Value: "slot-pm"},
			{Key: "classId", Value: "class-pottery"},
			{Key: "time", Value: "6:00 PM"},
			{Key: "date", Value: day.Add(18 * time.Hour)},
			{Key: "available", Value: false},
			{Key: "spotsRemaining", Value: 0},
		})
		mt.AddMockResponses(first, second)

		slots, err := repo.ListTimeSlots(context.Background(), "class-pottery", day.Add(15*time.Hour))
		if err != nil {
			t.Fatalf("ListTimeSlots: %v", err)
		}
		if len(slots) != 2 {
			t.Fatalf("slots = %d, want 2", len(slots))
		}
		if slots[0].ID != "slot-am" || !slots[1].IsFullyBooked() {
			t.Errorf("slots = %+v", slots)
		}
	})

	mt.Run("no slots", func(mt *mtest.T) {
		repo := NewMongoClassRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".time_slots", mtest.FirstBatch))

		slots, err := repo.ListTimeSlots(context.Background(), "class-pottery", time.Now())
		if err != nil || len(slots) != 0 || slots == nil {
			t.Errorf("slots=%v err=%v", slots, err)
		}
	})
}
