package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vcc-feedback/internal/feedback"
	errorspkg "vcc-feedback/internal/types/errors"
)

type SessionRepository struct {
	RedisClient  *redis.Client
	Logger       *zap.SugaredLogger
	tokenSecret  string
	baseDuration time.Duration
}

func NewSessionRepository(
	redisClient *redis.Client,
	logger *zap.SugaredLogger,
	tokenSecret string,
	baseDuration time.Duration,
) *SessionRepository {
	return &SessionRepository{
		RedisClient:  redisClient,
		Logger:       logger,
		tokenSecret:  tokenSecret,
		baseDuration: baseDuration,
	}
}

func (sessionRepository *SessionRepository) CreateSession(
	ctx context.Context,
	w http.ResponseWriter,
) (*Session, error) {
	now := time.Now()

	// Создаём новую сессию
	session := &Session{
		ID:        uuid.New().String(),
		StartTime: now,
		EndTime:   now.Add(sessionRepository.baseDuration),
	}

	// Сохраняем сессию в Redis
	if err := sessionRepository.saveSessionToRedis(ctx, session); err != nil {
		// Логируется внутри saveSessionToRedis
		return nil, err
	}

	// Генерируем JWT токен
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat":        session.StartTime.Unix(),
		"exp":        session.EndTime.Unix(),
		"session_id": session.ID,
	})

	tokenStr, err := token.SignedString([]byte(sessionRepository.tokenSecret))
	if err != nil {
		sessionRepository.Logger.Error("Failed to sign JWT token", zap.Error(err))
		return nil, fmt.Errorf("error signing token: %w", err)
	}

	// Без Expires/MaxAge: cookie умирает вместе с сессией браузера
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tokenStr,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	sessionRepository.Logger.Infof("Session %s created", session.ID)
	return session, nil
}

func (sessionRepository *SessionRepository) CheckSession(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, errorspkg.ErrNoSession
	}

	// Разбор токена
	token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			sessionRepository.Logger.Warnf("Unexpected signing method: %v", token.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(sessionRepository.tokenSecret), nil
	})
	if err != nil || !token.Valid {
		sessionRepository.Logger.Warnf("Invalid session token: %v", err)
		return nil, errorspkg.ErrNoSession
	}

	// Извлечение claims
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		sessionRepository.Logger.Warn("Unexpected claims type in session token")
		return nil, errorspkg.ErrNoSession
	}

	sessionID, ok := claims["session_id"].(string)
	if !ok || sessionID == "" {
		sessionRepository.Logger.Warn("session_id claim is missing or not a string")
		return nil, errorspkg.ErrNoSession
	}

	// Поиск сессии по ID
	ctx := r.Context()
	session, err := sessionRepository.getSessionFromRedis(ctx, sessionID)
	if err != nil {
		return nil, err // уже логируется внутри
	}

	if time.Now().After(session.EndTime) {
		_ = sessionRepository.RedisClient.Del(ctx, keyPrefix+sessionID).Err() // nolint:errcheck
		return nil, errorspkg.ErrSessionIsExpired
	}

	return session, nil
}

func (sessionRepository *SessionRepository) SaveLastSubmission(
	ctx context.Context,
	sess *Session,
	record feedback.Record,
) error {
	sess.LastSubmission = &record

	if err := sessionRepository.saveSessionToRedis(ctx, sess); err != nil {
		sessionRepository.Logger.Error(
			"Failed to stash last submission",
			zap.Error(err),
			zap.String("sessionID", sess.ID),
			zap.String("feedbackID", record.ID),
		)

		return err
	}

	return nil
}

func (sessionRepository *SessionRepository) saveSessionToRedis(
	ctx context.Context,
	session *Session,
) error {
	sessionDataJSON, err := json.Marshal(session)
	if err != nil {
		sessionRepository.Logger.Error(
			"Failed encode session to JSON",
			zap.Error(err),
			zap.String("sessionID", session.ID),
		)

		return err
	}

	ttl := time.Until(session.EndTime)
	if ttl <= 0 {
		ttl = sessionRepository.baseDuration
	}

	err = sessionRepository.RedisClient.Set(ctx, keyPrefix+session.ID, sessionDataJSON, ttl).Err()
	if err != nil {
		sessionRepository.Logger.Error(
			"Failed save session to Redis",
			zap.Error(err),
			zap.String("sessionID", session.ID),
		)

		return err
	}

	return nil
}

func (sessionRepository *SessionRepository) getSessionFromRedis(
	ctx context.Context,
	sessionID string,
) (*Session, error) {
	sessionDataJSON, err := sessionRepository.RedisClient.Get(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			sessionRepository.Logger.Info(
				fmt.Sprintf("Session %s not found in Redis", sessionID),
			)

			return nil, errorspkg.ErrSessionNotFound
		}

		sessionRepository.Logger.Error(
			"Failed get session from Redis",
			zap.Error(err),
			zap.String("sessionID", sessionID),
		)

		return nil, err
	}

	var session Session
	if err = json.Unmarshal(sessionDataJSON, &session); err != nil {
		sessionRepository.Logger.Error(
			"Failed decode session from JSON",
			zap.Error(err),
			zap.String("sessionID", sessionID),
		)

		return nil, err
	}

	return &session, nil
}
