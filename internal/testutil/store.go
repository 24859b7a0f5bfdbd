// Package testutil chứa store in-memory thay cho MongoDB trong unit test.
package testutil

import (
	"context"
	"reflect"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "campus_commerce/internal/api/base/service"
	"campus_commerce/internal/common"
	"campus_commerce/internal/utility"
)

// MemoryStore là một BaseServiceMongo chạy trên slice trong bộ nhớ. Hỗ trợ
// đúng tập filter mà các service nghiệp vụ dùng: equality trên field đơn và
// operator $lte. Update chỉ hỗ trợ $set và $unset. FindOneAndUpdate luôn trả
// về document sau khi cập nhật.
type MemoryStore[T any] struct {
	mu   sync.Mutex
	docs []map[string]interface{}
}

// NewMemoryStore tạo một store rỗng.
func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{}
}

var _ basesvc.BaseServiceMongo[struct{}] = (*MemoryStore[struct{}])(nil)

// normalize đưa một giá trị bất kỳ về dạng bson round-trip để so sánh và
// decode nhất quán với driver thật.
func normalize(value interface{}) interface{} {
	raw, err := bson.Marshal(bson.M{"v": value})
	if err != nil {
		return value
	}
	var decoded bson.M
	if err := bson.Unmarshal(raw, &decoded); err != nil {
		return value
	}
	return decoded["v"]
}

func asInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	}
	return 0, false
}

func valuesEqual(a, b interface{}) bool {
	if ai, ok := asInt64(a); ok {
		if bi, ok := asInt64(b); ok {
			return ai == bi
		}
	}
	return reflect.DeepEqual(normalize(a), normalize(b))
}

// matches kiểm tra một document với filter equality / $lte.
func matches(doc map[string]interface{}, filter interface{}) bool {
	if filter == nil {
		return true
	}
	filterMap, err := utility.ToMap(filter)
	if err != nil {
		return false
	}
	for key, want := range filterMap {
		got, exists := doc[key]
		if condition, ok := want.(bson.M); ok {
			if lte, hasLte := condition["$lte"]; hasLte {
				gotInt, okGot := asInt64(got)
				lteInt, okLte := asInt64(lte)
				if !exists || !okGot || !okLte || gotInt > lteInt {
					return false
				}
				continue
			}
		}
		if !exists || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

func (s *MemoryStore[T]) decode(doc map[string]interface{}) (T, error) {
	var result T
	raw, err := bson.Marshal(doc)
	if err != nil {
		return result, common.ErrInvalidFormat
	}
	if err := bson.Unmarshal(raw, &result); err != nil {
		return result, common.ErrInvalidFormat
	}
	return result, nil
}

func (s *MemoryStore[T]) findIndex(filter interface{}) int {
	for i, doc := range s.docs {
		if matches(doc, filter) {
			return i
		}
	}
	return -1
}

func applyUpdate(doc map[string]interface{}, update interface{}) error {
	updateData, err := basesvc.ToUpdateData(update)
	if err != nil {
		return common.ErrInvalidFormat
	}
	for key, value := range updateData.Set {
		doc[key] = normalize(value)
	}
	for key := range updateData.Unset {
		delete(doc, key)
	}
	doc["updatedAt"] = time.Now().UnixMilli()
	return nil
}

// InsertOne thêm document mới, strip empty string và stamp timestamps như
// store thật.
func (s *MemoryStore[T]) InsertOne(ctx context.Context, data T) (T, error) {
	var zero T
	doc, err := utility.ToMap(data)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}
	for key, value := range doc {
		if strValue, ok := value.(string); ok && strValue == "" {
			delete(doc, key)
		}
	}
	now := time.Now().UnixMilli()
	doc["createdAt"] = now
	doc["updatedAt"] = now
	doc["_id"] = primitive.NewObjectID()

	s.mu.Lock()
	s.docs = append(s.docs, doc)
	s.mu.Unlock()

	return s.decode(doc)
}

func (s *MemoryStore[T]) FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.findIndex(filter)
	if index == -1 {
		return zero, common.ErrNotFound
	}
	return s.decode(s.docs[index])
}

func (s *MemoryStore[T]) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := []T{}
	for _, doc := range s.docs {
		if !matches(doc, filter) {
			continue
		}
		decoded, err := s.decode(doc)
		if err != nil {
			return nil, err
		}
		results = append(results, decoded)
	}
	return results, nil
}

func (s *MemoryStore[T]) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.findIndex(filter)
	if index == -1 {
		return zero, common.ErrNotFound
	}
	if err := applyUpdate(s.docs[index], update); err != nil {
		return zero, err
	}
	return s.decode(s.docs[index])
}

func (s *MemoryStore[T]) DeleteOne(ctx context.Context, filter interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.findIndex(filter)
	if index == -1 {
		return common.ErrNotFound
	}
	s.docs = append(s.docs[:index], s.docs[index+1:]...)
	return nil
}

func (s *MemoryStore[T]) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []map[string]interface{}
	var deleted int64
	for _, doc := range s.docs {
		if matches(doc, filter) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	s.docs = kept
	return deleted, nil
}

func (s *MemoryStore[T]) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *options.FindOneAndUpdateOptions) (T, error) {
	return s.UpdateOne(ctx, filter, update, nil)
}

func (s *MemoryStore[T]) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, doc := range s.docs {
		if matches(doc, filter) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore[T]) DocumentExists(ctx context.Context, filter interface{}) (bool, error) {
	count, err := s.CountDocuments(ctx, filter)
	return count > 0, err
}

// Len trả về số document đang lưu, tiện assert trong test.
func (s *MemoryStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}
