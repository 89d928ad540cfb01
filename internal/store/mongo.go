package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"voice-assistant/internal/types"
)

const chatsCollection = "chats"

// MongoStore keeps one document per user in the chats collection, shaped
// {userId, messages: [{sender, text, timestamp}]}.
type MongoStore struct {
	client *mongo.Client
	chats  *mongo.Collection
}

// ConnectMongo dials uri and verifies the connection before returning.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return NewMongoStore(client, client.Database(database)), nil
}

func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{client: client, chats: db.Collection(chatsCollection)}
}

func (s *MongoStore) Append(ctx context.Context, userID string, msgs ...types.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	filter := bson.M{"userId": userID}
	update := bson.M{
		"$push": bson.M{"messages": bson.M{"$each": msgs}},
	}
	_, err := s.chats.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("append chat messages: %w", err)
	}
	return nil
}

func (s *MongoStore) History(ctx context.Context, userID string) ([]types.Chat, error) {
	cursor, err := s.chats.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("find chats: %w", err)
	}
	defer cursor.Close(ctx)

	chats := []types.Chat{}
	for cursor.Next(ctx) {
		var chat types.Chat
		if err := cursor.Decode(&chat); err != nil {
			return nil, fmt.Errorf("decode chat: %w", err)
		}
		chats = append(chats, chat)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate chats: %w", err)
	}
	return chats, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
