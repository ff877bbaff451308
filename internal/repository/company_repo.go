package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shukatsu-kanri/api/internal/models"
	"github.com/shukatsu-kanri/api/internal/query"
)

var ErrNotFound = errors.New("company not found")

type CompanyRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewCompanyRepository(db *mongo.Database) *CompanyRepository {
	return &CompanyRepository{
		coll:     db.Collection("companies"),
		counters: db.Collection("counters"),
	}
}

func (r *CompanyRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "company_name", Value: 1}},
		Options: options.Index().SetName("idx_company_name"),
	})
	return err
}

// nextID hands out integer ids from a counters document. The counter only
// ever increments, so ids are never reused even after deletes.
func (r *CompanyRepository) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "companies"},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next company id: %w", err)
	}
	return doc.Seq, nil
}

// Create assigns the id and both timestamps on c before inserting.
// company_name is assumed validated by the caller.
func (r *CompanyRepository) Create(ctx context.Context, c *models.Company) (int64, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return 0, err
	}
	c.ID = id
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt

	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return 0, fmt.Errorf("insert company: %w", err)
	}
	return id, nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	var c models.Company
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update merges a sparse patch into the record as a single
// FindOneAndUpdate, so a reader sees either all of the patch or none of
// it. Supplied values go into $set, explicitly-nulled optionals into
// $unset, and updated_at is refreshed in the same operation. Returns the
// merged record.
func (r *CompanyRepository) Update(ctx context.Context, id int64, p *models.CompanyPatch) (*models.Company, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}

	setStr := func(key string, f models.Optional[string]) {
		if !f.Set {
			return
		}
		if f.Valid {
			set[key] = f.Value
		} else {
			unset[key] = ""
		}
	}
	setTime := func(key string, f models.Optional[models.FlexTime]) {
		if !f.Set {
			return
		}
		if f.Valid {
			set[key] = f.Value.Time.UTC()
		} else {
			unset[key] = ""
		}
	}

	if p.CompanyName.Set && p.CompanyName.Valid {
		set["company_name"] = p.CompanyName.Value
	}
	setStr("industry", p.Industry)
	setStr("job_type", p.JobType)
	if p.Status.Set && p.Status.Valid {
		set["status"] = p.Status.Value
	}
	setTime("es_deadline", p.ESDeadline)
	if p.ESSubmitted.Set && p.ESSubmitted.Valid {
		set["es_submitted"] = p.ESSubmitted.Value
	}
	if p.InterviewCount.Set && p.InterviewCount.Valid {
		set["interview_count"] = p.InterviewCount.Value
	}
	setTime("next_interview_date", p.NextInterviewDate)
	setStr("website_url", p.WebsiteURL)
	setStr("recruit_url", p.RecruitURL)
	setStr("mypage_id", p.MypageID)
	setStr("mypage_password", p.MypagePassword)
	setStr("salary", p.Salary)
	setStr("location", p.Location)
	setStr("notes", p.Notes)
	setStr("interview_notes", p.InterviewNotes)
	if p.Priority.Set && p.Priority.Valid {
		set["priority"] = p.Priority.Value
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var merged models.Company
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&merged)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update company %d: %w", id, err)
	}
	return &merged, nil
}

// Delete reports whether a record existed; the caller decides whether a
// missing record is an error.
func (r *CompanyRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// List runs the validated query as an aggregation pipeline. Equality
// filters AND together; records missing the sort field (or holding null)
// rank after all others regardless of direction; ties break by id
// ascending so an identical query over an unchanged store always comes
// back in the same order.
func (r *CompanyRepository) List(ctx context.Context, p query.ListParams) ([]models.Company, error) {
	match := bson.M{}
	if p.Status != nil {
		match["status"] = *p.Status
	}
	if p.Industry != nil {
		match["industry"] = *p.Industry
	}
	if p.Priority != nil {
		match["priority"] = *p.Priority
	}

	dir := 1
	if p.Order == query.OrderDesc {
		dir = -1
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		// $type yields "missing" for absent fields, so one expression
		// covers both unset and explicit null.
		bson.D{{Key: "$addFields", Value: bson.M{
			"_sort_null": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{
					bson.M{"$type": "$" + p.SortBy},
					bson.A{"missing", "null"},
				}},
				1, 0,
			}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "_sort_null", Value: 1},
			{Key: p.SortBy, Value: dir},
			{Key: "_id", Value: 1},
		}}},
		bson.D{{Key: "$skip", Value: p.Skip}},
		bson.D{{Key: "$limit", Value: p.Limit}},
		bson.D{{Key: "$unset", Value: "_sort_null"}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer cur.Close(ctx)

	list := []models.Company{}
	for cur.Next(ctx) {
		var c models.Company
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, cur.Err()
}

// Search matches company_name by case-insensitive substring. It ignores
// filters, sort and pagination and returns every match, ordered by id.
func (r *CompanyRepository) Search(ctx context.Context, keyword string) ([]models.Company, error) {
	filter := bson.M{"company_name": bson.M{
		"$regex":   regexp.QuoteMeta(keyword),
		"$options": "i",
	}}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search companies: %w", err)
	}
	defer cur.Close(ctx)

	list := []models.Company{}
	for cur.Next(ctx) {
		var c models.Company
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, cur.Err()
}

// Statistics counts all records plus a per-status breakdown. Every
// canonical status appears in the map even at zero; statuses outside the
// canonical five contribute to Total only.
func (r *CompanyRepository) Statistics(ctx context.Context) (*models.Statistics, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count companies: %w", err)
	}

	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("group by status: %w", err)
	}
	defer cur.Close(ctx)

	byStatus := make(map[string]int64, 5)
	for _, s := range models.CanonicalStatuses() {
		byStatus[s] = 0
	}
	for cur.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		if _, ok := byStatus[row.Status]; ok {
			byStatus[row.Status] = row.Count
		}
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	return &models.Statistics{Total: total, ByStatus: byStatus}, nil
}
