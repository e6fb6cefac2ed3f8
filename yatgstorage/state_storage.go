package yatgstorage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/YaCodeDev/GoYaTgBotAPI/yacache"
	"github.com/YaCodeDev/GoYaTgBotAPI/yaencoding"
	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/YaCodeDev/GoYaTgBotAPI/yalogger"
	"github.com/gotd/td/telegram/updates"
)

const (
	LoggerEntityID  = "entity_id"
	LoggerEntityKey = "entity_key"
	LoggerChannelID = "channel_id"
)

// StateStorage keeps the gap-recovery state of the updates manager in a
// yacache.Cache: the common state as one MessagePack record, channel pts and
// channel access hashes as hashes keyed by channel ID.
//
// Partial setters read, modify and write the record under a process-wide
// lock, so a single bot process never loses a concurrent field update.
type StateStorage[T yacache.Container] struct {
	cache yacache.Cache[T]
	mutex sync.Mutex
	log   yalogger.Logger
}

func NewStateStorage[T yacache.Container](cache yacache.Cache[T], log yalogger.Logger) *StateStorage[T] {
	if log == nil {
		log = yalogger.NewBaseLogger(nil).NewLogger()
	}

	return &StateStorage[T]{
		cache: cache,
		log:   log,
	}
}

func (s *StateStorage[T]) Ping(ctx context.Context) yaerrors.Error {
	return s.cache.Ping(ctx)
}

// TelegramStorageCompatible adapts the storage to updates.StateStorage.
func (s *StateStorage[T]) TelegramStorageCompatible() updates.StateStorage {
	return &telegramStorage[T]{storage: s}
}

// TelegramAccessHasherCompatible adapts the storage to updates.ChannelAccessHasher.
func (s *StateStorage[T]) TelegramAccessHasherCompatible() updates.ChannelAccessHasher {
	return &telegramHasher[T]{storage: s}
}

func (s *StateStorage[T]) GetState(ctx context.Context, entityID int64) (updates.State, bool, yaerrors.Error) {
	key := getBotStateKey(entityID)
	log := s.initBaseFieldsLog("Fetching entity state", entityID, key)

	raw, err := s.cache.Get(ctx, key)
	if errors.Is(err, yacache.ErrNotFound) {
		return updates.State{}, false, nil
	}

	if err != nil {
		return updates.State{}, false, err.WrapWithLog("failed to fetch entity state", log)
	}

	state, err := yaencoding.DecodeMessagePack[updates.State]([]byte(raw))
	if err != nil {
		log.Warnf("Dropping unreadable entity state: %v", err)

		return updates.State{}, false, nil
	}

	return *state, true, nil
}

func (s *StateStorage[T]) SetState(ctx context.Context, entityID int64, state updates.State) yaerrors.Error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.setState(ctx, entityID, state)
}

func (s *StateStorage[T]) setState(ctx context.Context, entityID int64, state updates.State) yaerrors.Error {
	key := getBotStateKey(entityID)
	log := s.initBaseFieldsLog("Setting entity state", entityID, key)

	raw, err := yaencoding.EncodeMessagePack(state)
	if err != nil {
		return err.WrapWithLog("failed to encode entity state", log)
	}

	if err := s.cache.Set(ctx, key, string(raw), 0); err != nil {
		return yaerrors.FromErrorWithLog(
			http.StatusInternalServerError,
			errors.Join(err, ErrFailedToSetState),
			"failed to set entity state",
			log,
		)
	}

	return nil
}

func (s *StateStorage[T]) modifyState(
	ctx context.Context,
	entityID int64,
	modify func(state *updates.State),
) yaerrors.Error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	state, _, err := s.GetState(ctx, entityID)
	if err != nil {
		return yaerrors.FromError(
			http.StatusInternalServerError,
			errors.Join(err, ErrFailedToGetState),
			"failed to modify entity state",
		)
	}

	modify(&state)

	return s.setState(ctx, entityID, state)
}

func (s *StateStorage[T]) SetPts(ctx context.Context, entityID int64, pts int) yaerrors.Error {
	return s.modifyState(ctx, entityID, func(state *updates.State) { state.Pts = pts })
}

func (s *StateStorage[T]) SetQts(ctx context.Context, entityID int64, qts int) yaerrors.Error {
	return s.modifyState(ctx, entityID, func(state *updates.State) { state.Qts = qts })
}

func (s *StateStorage[T]) SetDate(ctx context.Context, entityID int64, date int) yaerrors.Error {
	return s.modifyState(ctx, entityID, func(state *updates.State) { state.Date = date })
}

func (s *StateStorage[T]) SetSeq(ctx context.Context, entityID int64, seq int) yaerrors.Error {
	return s.modifyState(ctx, entityID, func(state *updates.State) { state.Seq = seq })
}

func (s *StateStorage[T]) SetDateSeq(ctx context.Context, entityID int64, date, seq int) yaerrors.Error {
	return s.modifyState(ctx, entityID, func(state *updates.State) {
		state.Date = date
		state.Seq = seq
	})
}

func (s *StateStorage[T]) SetChannelPts(ctx context.Context, entityID, channelID int64, pts int) yaerrors.Error {
	key := getChannelPtsKey(entityID)

	if err := s.cache.HSet(ctx, key, strconv.FormatInt(channelID, 10), strconv.Itoa(pts)); err != nil {
		return err.WrapWithLog(
			"failed to set channel pts",
			s.initBaseFieldsLog("Setting channel pts", entityID, key).WithField(LoggerChannelID, channelID),
		)
	}

	return nil
}

func (s *StateStorage[T]) GetChannelPts(ctx context.Context, entityID, channelID int64) (int, bool, yaerrors.Error) {
	key := getChannelPtsKey(entityID)
	log := s.initBaseFieldsLog("Fetching channel pts", entityID, key).WithField(LoggerChannelID, channelID)

	data, err := s.cache.HGet(ctx, key, strconv.FormatInt(channelID, 10))
	if errors.Is(err, yacache.ErrNotFound) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, err.WrapWithLog("failed to get channel pts", log)
	}

	pts, parseErr := strconv.Atoi(data)
	if parseErr != nil {
		return 0, false, yaerrors.FromErrorWithLog(
			http.StatusInternalServerError,
			errors.Join(parseErr, ErrFailedToParsePts),
			"failed to get channel pts",
			log,
		)
	}

	return pts, true, nil
}

func (s *StateStorage[T]) ForEachChannels(
	ctx context.Context,
	entityID int64,
	action func(ctx context.Context, channelID int64, pts int) error,
) yaerrors.Error {
	key := getChannelPtsKey(entityID)
	log := s.initBaseFieldsLog("Start action for each channels", entityID, key)

	channels, err := s.cache.HGetAll(ctx, key)
	if err != nil {
		return err.WrapWithLog("failed to get all channels", log)
	}

	for rawID, rawPts := range channels {
		channelID, parseErr := strconv.ParseInt(rawID, 10, 64)
		if parseErr != nil {
			return yaerrors.FromErrorWithLog(
				http.StatusInternalServerError,
				errors.Join(parseErr, ErrFailedToParseChannelID),
				"failed to parse channel id",
				log,
			)
		}

		pts, parseErr := strconv.Atoi(rawPts)
		if parseErr != nil {
			return yaerrors.FromErrorWithLog(
				http.StatusInternalServerError,
				errors.Join(parseErr, ErrFailedToParsePts),
				"failed to parse pts",
				log,
			)
		}

		if actionErr := action(ctx, channelID, pts); actionErr != nil {
			return yaerrors.FromErrorWithLog(
				http.StatusInternalServerError,
				errors.Join(actionErr, ErrFromCalledActionOfChannel),
				fmt.Sprintf("failed action of channel %d", channelID),
				log,
			)
		}
	}

	return nil
}

func (s *StateStorage[T]) SetChannelAccessHash(
	ctx context.Context,
	entityID, channelID, accessHash int64,
) yaerrors.Error {
	key := getChannelAccessHashKey(entityID)

	if err := s.cache.HSet(
		ctx,
		key,
		strconv.FormatInt(channelID, 10),
		strconv.FormatInt(accessHash, 10),
	); err != nil {
		return err.WrapWithLog(
			"failed to set channel access hash",
			s.initBaseFieldsLog("Setting channel access hash", entityID, key).WithField(LoggerChannelID, channelID),
		)
	}

	return nil
}

func (s *StateStorage[T]) GetChannelAccessHash(
	ctx context.Context,
	entityID, channelID int64,
) (int64, bool, yaerrors.Error) {
	key := getChannelAccessHashKey(entityID)
	log := s.initBaseFieldsLog("Fetching channel access hash", entityID, key).WithField(LoggerChannelID, channelID)

	data, err := s.cache.HGet(ctx, key, strconv.FormatInt(channelID, 10))
	if errors.Is(err, yacache.ErrNotFound) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, err.WrapWithLog("failed to get channel access hash", log)
	}

	hash, parseErr := strconv.ParseInt(data, 10, 64)
	if parseErr != nil {
		return 0, false, yaerrors.FromErrorWithLog(
			http.StatusInternalServerError,
			errors.Join(parseErr, ErrFailedToParseAccessHash),
			"failed to parse channel access hash",
			log,
		)
	}

	return hash, true, nil
}

func (s *StateStorage[T]) initBaseFieldsLog(entryText string, entityID int64, key string) yalogger.Logger {
	log := s.log.WithField(LoggerEntityID, entityID).WithField(LoggerEntityKey, key)

	log.Tracef("%s", entryText)

	return log
}

func getBotStateKey(entityID int64) string {
	return fmt.Sprintf("bot-state:%d", entityID)
}

func getChannelAccessHashKey(entityID int64) string {
	return fmt.Sprintf("bot-channel-access-hash:%d", entityID)
}

func getChannelPtsKey(entityID int64) string {
	return fmt.Sprintf("bot-channel-pts:%d", entityID)
}

type telegramStorage[T yacache.Container] struct {
	storage *StateStorage[T]
}

func asError(err yaerrors.Error) error {
	if err == nil {
		return nil
	}

	return err
}

func (t *telegramStorage[T]) GetState(ctx context.Context, userID int64) (updates.State, bool, error) {
	state, found, err := t.storage.GetState(ctx, userID)

	return state, found, asError(err)
}

func (t *telegramStorage[T]) SetState(ctx context.Context, userID int64, state updates.State) error {
	return asError(t.storage.SetState(ctx, userID, state))
}

func (t *telegramStorage[T]) SetPts(ctx context.Context, userID int64, pts int) error {
	return asError(t.storage.SetPts(ctx, userID, pts))
}

func (t *telegramStorage[T]) SetQts(ctx context.Context, userID int64, qts int) error {
	return asError(t.storage.SetQts(ctx, userID, qts))
}

func (t *telegramStorage[T]) SetDate(ctx context.Context, userID int64, date int) error {
	return asError(t.storage.SetDate(ctx, userID, date))
}

func (t *telegramStorage[T]) SetSeq(ctx context.Context, userID int64, seq int) error {
	return asError(t.storage.SetSeq(ctx, userID, seq))
}

func (t *telegramStorage[T]) SetDateSeq(ctx context.Context, userID int64, date, seq int) error {
	return asError(t.storage.SetDateSeq(ctx, userID, date, seq))
}

func (t *telegramStorage[T]) GetChannelPts(ctx context.Context, userID, channelID int64) (int, bool, error) {
	pts, found, err := t.storage.GetChannelPts(ctx, userID, channelID)

	return pts, found, asError(err)
}

func (t *telegramStorage[T]) SetChannelPts(ctx context.Context, userID, channelID int64, pts int) error {
	return asError(t.storage.SetChannelPts(ctx, userID, channelID, pts))
}

func (t *telegramStorage[T]) ForEachChannels(
	ctx context.Context,
	userID int64,
	f func(ctx context.Context, channelID int64, pts int) error,
) error {
	return asError(t.storage.ForEachChannels(ctx, userID, f))
}

type telegramHasher[T yacache.Container] struct {
	storage *StateStorage[T]
}

func (t *telegramHasher[T]) SetChannelAccessHash(ctx context.Context, userID, channelID, accessHash int64) error {
	return asError(t.storage.SetChannelAccessHash(ctx, userID, channelID, accessHash))
}

func (t *telegramHasher[T]) GetChannelAccessHash(ctx context.Context, userID, channelID int64) (int64, bool, error) {
	hash, found, err := t.storage.GetChannelAccessHash(ctx, userID, channelID)

	return hash, found, asError(err)
}
