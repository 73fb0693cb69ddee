package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrMQTTBrokerNotFound = errors.New("mqtt broker config not found")

// MQTTBroker is the optional broker control writes are published to.
type MQTTBroker struct {
	ID          int64
	ProfileID   int64
	URL         string // e.g. tcp://192.168.1.2:1883
	Username    string
	Password    string
	TopicPrefix string
}

// MQTTBrokerStore provides broker config operations.
type MQTTBrokerStore interface {
	Get(ctx context.Context, profileID int64) (*MQTTBroker, error)
	Save(ctx context.Context, b *MQTTBroker) error
	Delete(ctx context.Context, profileID int64) error
}

// MQTTBrokers returns an MQTTBrokerStore for this database.
func (db *DB) MQTTBrokers() MQTTBrokerStore {
	return &mqttBrokerStore{db: db}
}

type mqttBrokerStore struct {
	db *DB
}

func (s *mqttBrokerStore) Get(ctx context.Context, profileID int64) (*MQTTBroker, error) {
	b := &MQTTBroker{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, profile_id, url, username, password, topic_prefix
		FROM mqtt_brokers WHERE profile_id = ?
	`, profileID).Scan(&b.ID, &b.ProfileID, &b.URL, &b.Username, &b.Password, &b.TopicPrefix)
	if err == sql.ErrNoRows {
		return nil, ErrMQTTBrokerNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *mqttBrokerStore) Save(ctx context.Context, b *MQTTBroker) error {
	if b.TopicPrefix == "" {
		b.TopicPrefix = "lmsync"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mqtt_brokers (profile_id, url, username, password, topic_prefix)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
			url = excluded.url,
			username = excluded.username,
			password = excluded.password,
			topic_prefix = excluded.topic_prefix
	`, b.ProfileID, b.URL, b.Username, b.Password, b.TopicPrefix)
	if err != nil {
		return fmt.Errorf("failed to save mqtt broker config: %w", err)
	}
	return nil
}

func (s *mqttBrokerStore) Delete(ctx context.Context, profileID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM mqtt_brokers WHERE profile_id = ?`, profileID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrMQTTBrokerNotFound
	}
	return nil
}
