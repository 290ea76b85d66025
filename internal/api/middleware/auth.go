// auth.go — JWT middleware аутентификации Gateway.
// Токен извлекается из cookie "token" или заголовка Authorization (Bearer).
// Два режима проверки подписи: HS256 по общему секрету (GW_JWT_SECRET)
// или RS256 через JWKS auth-сервиса (GW_JWKS_URL).
// Результаты проверки кэшируются в expirable LRU по строке токена.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru/v2/expirable"

	apierrors "github.com/arturkryukov/jobportal/gateway/internal/api/errors"
	"github.com/arturkryukov/jobportal/gateway/internal/domain/model"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

// ContextKeyIdentity — проверенная личность в контексте запроса.
const ContextKeyIdentity contextKey = "identity"

// Сообщения об ошибках аутентификации.
// Тексты — часть контракта API, клиентский код их сопоставляет.
const (
	MsgNoToken      = "Access denied. No token provided."
	MsgInvalidToken = "Invalid or expired token."
)

// identityCacheSize — ёмкость LRU-кэша токен → личность.
const identityCacheSize = 1024

// identityCacheTTL — максимальное время жизни записи кэша.
// Срок действия самого токена при попадании проверяется отдельно.
const identityCacheTTL = time.Minute

// gatewayClaims — raw claims из JWT auth-сервиса.
type gatewayClaims struct {
	jwt.RegisteredClaims
	// Username — имя пользователя.
	Username string `json:"username"`
	// AccountType — тип учётной записи (jobseeker, employer, ...).
	AccountType string `json:"accountType"`
}

// AuthGate — middleware проверки JWT с двумя политиками: Require и Optional.
type AuthGate struct {
	// secret — общий секрет HS256 (пустой в режиме JWKS)
	secret []byte
	// jwks — keyfunc для RS256 (nil в режиме общего секрета)
	jwks   keyfunc.Keyfunc
	leeway time.Duration
	logger *slog.Logger
	// cache — токен → проверенная личность
	cache *lru.LRU[string, *model.Identity]
}

// NewAuthGate создаёт auth gate. Если jwksURL не пустой — режим RS256
// через JWKS с фоновым обновлением ключей; иначе HS256 по секрету.
func NewAuthGate(
	secret string,
	jwksURL string,
	jwksRefreshInterval time.Duration,
	leeway time.Duration,
	logger *slog.Logger,
) (*AuthGate, error) {
	gate := &AuthGate{
		leeway: leeway,
		logger: logger.With(slog.String("component", "auth_gate")),
		cache:  lru.NewLRU[string, *model.Identity](identityCacheSize, nil, identityCacheTTL),
	}

	if jwksURL != "" {
		// JWKS Storage с фоновым обновлением.
		// NoErrorReturnFirstHTTPReq — стартуем даже если auth-сервис ещё недоступен.
		storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
			NoErrorReturnFirstHTTPReq: true,
			RefreshInterval:           jwksRefreshInterval,
			RefreshErrorHandler: func(_ context.Context, err error) {
				gate.logger.Error("Ошибка обновления JWKS",
					slog.String("error", err.Error()),
					slog.String("url", jwksURL),
				)
			},
		})
		if err != nil {
			return nil, err
		}

		k, err := keyfunc.New(keyfunc.Options{Storage: storage})
		if err != nil {
			return nil, err
		}
		gate.jwks = k
	} else {
		gate.secret = []byte(secret)
	}

	return gate, nil
}

// Require возвращает middleware, требующий валидный токен.
// Без токена — 401, с невалидным или просроченным — 403.
func (g *AuthGate) Require() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				apierrors.Unauthorized(w, MsgNoToken)
				return
			}

			identity, err := g.authenticate(r.Context(), tokenString)
			if err != nil {
				g.logger.Debug("JWT валидация не пройдена",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				apierrors.Forbidden(w, MsgInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Optional возвращает middleware, принимающий запросы и без токена.
// Валидный токен помещает личность в контекст; отсутствующий или
// невалидный — запрос проходит анонимно.
func (g *AuthGate) Optional() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := g.authenticate(r.Context(), tokenString)
			if err != nil {
				g.logger.Debug("Невалидный токен на опциональном маршруте, запрос анонимный",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate проверяет токен и возвращает личность.
// Кэш-попадание не отменяет проверку срока действия: запись могла
// пережить exp токена.
func (g *AuthGate) authenticate(ctx context.Context, tokenString string) (*model.Identity, error) {
	if identity, ok := g.cache.Get(tokenString); ok {
		if identity.ExpiresAt.IsZero() || time.Now().Before(identity.ExpiresAt.Add(g.leeway)) {
			return identity, nil
		}
		g.cache.Remove(tokenString)
		return nil, jwt.ErrTokenExpired
	}

	rawClaims := &gatewayClaims{}
	parserOpts := []jwt.ParserOption{
		jwt.WithLeeway(g.leeway),
	}

	var token *jwt.Token
	var err error
	if g.jwks != nil {
		parserOpts = append(parserOpts, jwt.WithValidMethods([]string{"RS256"}))
		token, err = jwt.ParseWithClaims(tokenString, rawClaims, g.jwks.KeyfuncCtx(ctx), parserOpts...)
	} else {
		parserOpts = append(parserOpts, jwt.WithValidMethods([]string{"HS256"}))
		token, err = jwt.ParseWithClaims(tokenString, rawClaims,
			func(_ *jwt.Token) (any, error) { return g.secret, nil }, parserOpts...)
	}
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	identity := &model.Identity{
		Subject:     rawClaims.Subject,
		Username:    rawClaims.Username,
		AccountType: rawClaims.AccountType,
	}
	if rawClaims.IssuedAt != nil {
		identity.IssuedAt = rawClaims.IssuedAt.Time
	}
	if rawClaims.ExpiresAt != nil {
		identity.ExpiresAt = rawClaims.ExpiresAt.Time
	}

	g.cache.Add(tokenString, identity)
	return identity, nil
}

// extractToken извлекает токен из cookie "token" или заголовка
// Authorization (Bearer). Cookie имеет приоритет.
func extractToken(r *http.Request) string {
	if c, err := r.Cookie("token"); err == nil && c.Value != "" {
		return c.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	// Заголовок без префикса Bearer принимаем как сырой токен
	return strings.TrimSpace(authHeader)
}

// IdentityFromContext извлекает личность из контекста запроса.
// Возвращает nil для анонимных запросов.
func IdentityFromContext(ctx context.Context) *model.Identity {
	identity, _ := ctx.Value(ContextKeyIdentity).(*model.Identity)
	return identity
}

// TokenFromRequest возвращает сырой токен запроса (для проброса
// в уведомления). Пустая строка — запрос без токена.
func TokenFromRequest(r *http.Request) string {
	return extractToken(r)
}
