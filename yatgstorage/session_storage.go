package yatgstorage

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/YaCodeDev/GoYaTgBotAPI/threadsafemap"
	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepo persists encrypted MTProto sessions per bot.
type SessionRepo interface {
	UpdateAuthKey(ctx context.Context, entityID int64, encryptedAuthKey []byte) yaerrors.Error
	FetchAuthKey(ctx context.Context, entityID int64) ([]byte, yaerrors.Error)
}

// SessionStorage encrypts the gotd session blob with a key derived from the
// bot token before handing it to a SessionRepo.
//
// Example:
//
//	repo, _ := yatgstorage.NewGormSessionRepo(db)
//	storage := yatgstorage.NewSessionStorageWithCustomRepo(botID, token, repo)
//	client := telegram.NewClient(appID, appHash, telegram.Options{
//		SessionStorage: storage.TelegramSessionStorageCompatible(),
//	})
type SessionStorage struct {
	entityID int64
	aes      AES
	repo     SessionRepo
}

// NewSessionStorage keeps the session in process memory.
func NewSessionStorage(entityID int64, secret string) *SessionStorage {
	return NewSessionStorageWithCustomRepo(entityID, secret, NewMemorySessionRepo())
}

func NewSessionStorageWithCustomRepo(entityID int64, secret string, repo SessionRepo) *SessionStorage {
	return &SessionStorage{
		entityID: entityID,
		aes:      NewAES(secret),
		repo:     repo,
	}
}

func (s *SessionStorage) StoreSession(ctx context.Context, data []byte) yaerrors.Error {
	out, err := s.aes.Encrypt(data)
	if err != nil {
		return err.Wrap("failed to encrypt session")
	}

	if err = s.repo.UpdateAuthKey(ctx, s.entityID, out); err != nil {
		return err.Wrap("failed to save updated session")
	}

	return nil
}

// LoadSession returns nil data without error when nothing is stored yet.
func (s *SessionStorage) LoadSession(ctx context.Context) ([]byte, yaerrors.Error) {
	stored, err := s.repo.FetchAuthKey(ctx, s.entityID)
	if err != nil {
		return nil, err.Wrap("failed to fetch session")
	}

	if len(stored) == 0 {
		return nil, nil
	}

	out, err := s.aes.Decrypt(stored)
	if err != nil {
		return nil, err.Wrap("failed to decrypt session")
	}

	return out, nil
}

// TelegramSessionStorageCompatible adapts the storage to telegram.SessionStorage.
func (s *SessionStorage) TelegramSessionStorageCompatible() telegram.SessionStorage {
	return &telegramSessionStorage{storage: s}
}

type telegramSessionStorage struct {
	storage *SessionStorage
}

func (t *telegramSessionStorage) StoreSession(ctx context.Context, data []byte) error {
	if err := t.storage.StoreSession(ctx, data); err != nil {
		return err
	}

	return nil
}

func (t *telegramSessionStorage) LoadSession(ctx context.Context) ([]byte, error) {
	data, err := t.storage.LoadSession(ctx)
	if err != nil {
		return nil, err
	}

	if data == nil {
		return nil, session.ErrNotFound
	}

	return data, nil
}

// BotSession is the gorm model of a stored session.
type BotSession struct {
	EntityID         int64     `gorm:"primaryKey;autoIncrement:false"`
	EncryptedAuthKey []byte    `gorm:"type:blob"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

const FieldEncryptedAuthKey = "encrypted_auth_key"

// GormSessionRepo stores sessions in any gorm-supported database.
type GormSessionRepo struct {
	poolDB *gorm.DB
}

func NewGormSessionRepo(poolDB *gorm.DB) (*GormSessionRepo, yaerrors.Error) {
	if err := poolDB.AutoMigrate(&BotSession{}); err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"failed to migrate bot sessions",
		)
	}

	return &GormSessionRepo{poolDB: poolDB}, nil
}

func (g *GormSessionRepo) UpdateAuthKey(
	ctx context.Context,
	entityID int64,
	encryptedAuthKey []byte,
) yaerrors.Error {
	if err := g.poolDB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_id"}},
			DoUpdates: clause.AssignmentColumns([]string{FieldEncryptedAuthKey, "updated_at"}),
		}).
		Create(&BotSession{
			EntityID:         entityID,
			EncryptedAuthKey: encryptedAuthKey,
		}).Error; err != nil {
		return yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"failed to update encrypted auth key",
		)
	}

	return nil
}

func (g *GormSessionRepo) FetchAuthKey(ctx context.Context, entityID int64) ([]byte, yaerrors.Error) {
	var stored BotSession

	err := g.poolDB.WithContext(ctx).
		Where(&BotSession{EntityID: entityID}).
		Take(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"failed to fetch encrypted auth key",
		)
	}

	return stored.EncryptedAuthKey, nil
}

// MemorySessionRepo keeps sessions for the lifetime of the process.
type MemorySessionRepo struct {
	sessions *threadsafemap.ThreadSafeMap[int64, []byte]
}

func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{sessions: threadsafemap.NewThreadSafeMap[int64, []byte]()}
}

func (m *MemorySessionRepo) UpdateAuthKey(_ context.Context, entityID int64, encryptedAuthKey []byte) yaerrors.Error {
	m.sessions.Set(entityID, append([]byte(nil), encryptedAuthKey...))

	return nil
}

func (m *MemorySessionRepo) FetchAuthKey(_ context.Context, entityID int64) ([]byte, yaerrors.Error) {
	data, _ := m.sessions.Get(entityID)

	return data, nil
}

// AES seals data with AES-256-GCM; the nonce is prepended to the ciphertext.
type AES struct {
	key []byte
}

func NewAES(secret string) AES {
	return AES{key: DeriveAESKey(secret)}
}

func (a AES) gcm() (cipher.AEAD, yaerrors.Error) {
	block, err := aes.NewCipher(a.key)
	if err != nil {
		return nil, yaerrors.FromError(http.StatusInternalServerError, err, "could not create new cipher")
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, yaerrors.FromError(http.StatusInternalServerError, err, "could not create gcm")
	}

	return aead, nil
}

func (a AES) Encrypt(text []byte) ([]byte, yaerrors.Error) {
	aead, yaerr := a.gcm()
	if yaerr != nil {
		return nil, yaerr
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(text)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, yaerrors.FromError(http.StatusInternalServerError, err, "could not read nonce")
	}

	return aead.Seal(nonce, nonce, text, nil), nil
}

func (a AES) Decrypt(text []byte) ([]byte, yaerrors.Error) {
	aead, yaerr := a.gcm()
	if yaerr != nil {
		return nil, yaerr
	}

	if len(text) < aead.NonceSize() {
		return nil, yaerrors.FromError(http.StatusInternalServerError, ErrCipherTextTooShort, "could not decrypt")
	}

	out, err := aead.Open(nil, text[:aead.NonceSize()], text[aead.NonceSize():], nil)
	if err != nil {
		return nil, yaerrors.FromError(http.StatusInternalServerError, err, "could not decrypt")
	}

	return out, nil
}

// DeriveAESKey hashes secret into a 32-byte key.
func DeriveAESKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))

	return sum[:]
}
