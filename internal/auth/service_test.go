package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/agriconnect/agriconnect/internal/apperror"
	"github.com/agriconnect/agriconnect/internal/identity"
	"github.com/agriconnect/agriconnect/internal/logging"
	"github.com/agriconnect/agriconnect/internal/notification"
	"github.com/agriconnect/agriconnect/internal/otp"
	"github.com/agriconnect/agriconnect/internal/profile"
)

type testEnv struct {
	svc    *Service
	users  *identity.MemoryRepository
	codes  *otp.MemoryLedger
	tokens *TokenIssuer
}

func newTestService(cache *redis.Client) testEnv {
	users := identity.NewMemoryRepository()
	profiles := profile.NewMemoryRepository()
	codes := otp.NewMemoryLedger()
	logger := logging.Discard()
	tokens := NewTokenIssuer("test-secret", time.Hour)

	svc := NewService(Deps{
		Users:     users,
		Profiles:  profiles,
		Registrar: NewMemoryRegistrar(users, profiles),
		Hasher:    identity.NewHasher(4),
		Tokens:    tokens,
		OTPs:      otp.NewService(codes, nil, nil, 5*time.Minute, logger),
		Limiter:   NewLoginLimiter(cache, 5, 5*time.Minute),
		Notifier:  notification.NewService(notification.NewMemoryRepository(), nil, logger),
		Logger:    logger,
	})
	return testEnv{svc: svc, users: users, codes: codes, tokens: tokens}
}

func wantKind(t *testing.T, err error, kind apperror.Kind) *apperror.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %d, got nil", kind)
	}
	appErr, ok := apperror.As(err)
	if !ok {
		t.Fatalf("expected apperror, got %v", err)
	}
	if appErr.Kind != kind {
		t.Fatalf("expected kind %d, got %d (%s)", kind, appErr.Kind, appErr.Message)
	}
	return appErr
}

func registerFarmer(t *testing.T, env testEnv) AuthResult {
	t.Helper()
	result, err := env.svc.Register(context.Background(), RegisterInput{
		Name:     "Ram Patil",
		Mobile:   "9876543210",
		Password: "Abc123",
		Role:     "farmer",
		Profile:  profile.Input{FarmName: "Green Acres", Crops: []string{"tomato", "onion"}},
	})
	if err != nil {
		t.Fatalf("register farmer: %v", err)
	}
	return result
}

func TestRegisterFarmer(t *testing.T) {
	env := newTestService(nil)
	result := registerFarmer(t, env)

	claims, err := env.tokens.Verify(result.Token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.Role != identity.RoleFarmer || claims.Subject != result.User.ID {
		t.Fatalf("unexpected claims: subject=%s role=%s", claims.Subject, claims.Role)
	}

	if result.User.Email != "9876543210@agriconnect.local" {
		t.Fatalf("expected synthetic email, got %s", result.User.Email)
	}
	if !result.User.Active || result.User.Verified {
		t.Fatalf("expected active unverified account, got active=%v verified=%v", result.User.Active, result.User.Verified)
	}

	if result.Profile == nil || result.Profile.Farmer == nil {
		t.Fatalf("expected farmer profile, got %+v", result.Profile)
	}
	farmer := result.Profile.Farmer
	if farmer.FarmName != "Green Acres" {
		t.Fatalf("expected farm name Green Acres, got %s", farmer.FarmName)
	}
	if len(farmer.Crops) != 2 || farmer.Crops[0] != "tomato" {
		t.Fatalf("unexpected crops: %v", farmer.Crops)
	}
	if farmer.FarmSize != 1 || farmer.FarmSizeUnit != "acre" || farmer.PickupSlot != "morning" {
		t.Fatalf("expected defaults, got size=%v unit=%s slot=%s", farmer.FarmSize, farmer.FarmSizeUnit, farmer.PickupSlot)
	}
}

func TestRegisterDuplicateMobile(t *testing.T) {
	env := newTestService(nil)
	registerFarmer(t, env)

	_, err := env.svc.Register(context.Background(), RegisterInput{
		Name:     "Another Farmer",
		Mobile:   "9876543210",
		Password: "Xyz789",
		Role:     "vendor",
		Profile:  profile.Input{ShopName: "Fresh Mart"},
	})
	wantKind(t, err, apperror.KindConflict)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestService(nil)

	_, err := env.svc.Register(context.Background(), RegisterInput{
		Name:     "Ram Patil",
		Mobile:   "12345",
		Password: "abc",
		Role:     "farmer",
	})
	appErr := wantKind(t, err, apperror.KindValidation)
	if _, ok := appErr.Fields["mobile"]; !ok {
		t.Fatalf("expected mobile field error, got %v", appErr.Fields)
	}
	if _, ok := appErr.Fields["password"]; !ok {
		t.Fatalf("expected password field error, got %v", appErr.Fields)
	}
}

func TestRegisterUnknownCrop(t *testing.T) {
	env := newTestService(nil)

	_, err := env.svc.Register(context.Background(), RegisterInput{
		Name:     "Ram Patil",
		Mobile:   "9876543210",
		Password: "Abc123",
		Role:     "farmer",
		Profile:  profile.Input{Crops: []string{"durian"}},
	})
	appErr := wantKind(t, err, apperror.KindValidation)
	if _, ok := appErr.Fields["crops"]; !ok {
		t.Fatalf("expected crops field error, got %v", appErr.Fields)
	}

	// nothing may survive the failed registration
	exists, err := env.users.IdentityExists(context.Background(), "9876543210", "9876543210@agriconnect.local")
	if err != nil {
		t.Fatalf("identity exists: %v", err)
	}
	if exists {
		t.Fatalf("failed registration left a credential record behind")
	}
}

func TestLoginPassword(t *testing.T) {
	env := newTestService(nil)
	registerFarmer(t, env)
	ctx := context.Background()

	_, err := env.svc.Login(ctx, LoginInput{Mobile: "9876543210", Password: "wrong-pass"})
	appErr := wantKind(t, err, apperror.KindUnauthenticated)
	if appErr.Message != "invalid credentials" {
		t.Fatalf("expected opaque rejection, got %q", appErr.Message)
	}

	result, err := env.svc.Login(ctx, LoginInput{Mobile: "9876543210", Password: "Abc123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected a token on successful login")
	}
	if result.User.LastLogin == nil {
		t.Fatalf("expected last login to be stamped")
	}
}

func TestLoginUnknownMobile(t *testing.T) {
	env := newTestService(nil)

	_, err := env.svc.Login(context.Background(), LoginInput{Mobile: "9999999999", Password: "Abc123"})
	appErr := wantKind(t, err, apperror.KindUnauthenticated)
	if appErr.Message != "invalid credentials" {
		t.Fatalf("unknown mobile must get the same rejection, got %q", appErr.Message)
	}
}

func TestLoginDeactivated(t *testing.T) {
	env := newTestService(nil)
	result := registerFarmer(t, env)
	ctx := context.Background()

	if err := env.svc.Deactivate(ctx, result.User.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	_, err := env.svc.Login(ctx, LoginInput{Mobile: "9876543210", Password: "Abc123"})
	wantKind(t, err, apperror.KindForbidden)
}

func TestLoginOTP(t *testing.T) {
	env := newTestService(nil)
	registerFarmer(t, env)
	ctx := context.Background()

	if err := env.svc.SendOTP(ctx, "9876543210"); err != nil {
		t.Fatalf("send otp: %v", err)
	}
	code, err := env.codes.Get(ctx, "9876543210")
	if err != nil {
		t.Fatalf("read issued code: %v", err)
	}
	if len(code) != otp.CodeLength {
		t.Fatalf("expected %d digit code, got %q", otp.CodeLength, code)
	}

	result, err := env.svc.Login(ctx, LoginInput{Mobile: "9876543210", OTP: code})
	if err != nil {
		t.Fatalf("otp login: %v", err)
	}
	if !result.User.Verified {
		t.Fatalf("otp login must mark the account verified")
	}

	// the code was consumed on success
	_, err = env.svc.Login(ctx, LoginInput{Mobile: "9876543210", OTP: code})
	wantKind(t, err, apperror.KindUnauthenticated)
}

func TestLoginLockout(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	env := newTestService(cache)
	registerFarmer(t, env)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := env.svc.Login(ctx, LoginInput{Mobile: "9876543210", Password: "wrong-pass"})
		wantKind(t, err, apperror.KindUnauthenticated)
	}

	// even the right password is rejected while locked out
	_, err := env.svc.Login(ctx, LoginInput{Mobile: "9876543210", Password: "Abc123"})
	wantKind(t, err, apperror.KindTooManyRequests)

	mr.FastForward(6 * time.Minute)
	if _, err := env.svc.Login(ctx, LoginInput{Mobile: "9876543210", Password: "Abc123"}); err != nil {
		t.Fatalf("login after window lapsed: %v", err)
	}
}

func TestVerifyOTP(t *testing.T) {
	env := newTestService(nil)
	registerFarmer(t, env)
	ctx := context.Background()

	// nothing issued yet
	err := env.svc.VerifyOTP(ctx, "9876543210", "000000")
	appErr := wantKind(t, err, apperror.KindUnauthenticated)
	if appErr.Message != "otp expired" {
		t.Fatalf("expected otp expired, got %q", appErr.Message)
	}

	if err := env.svc.SendOTP(ctx, "9876543210"); err != nil {
		t.Fatalf("send otp: %v", err)
	}
	code, _ := env.codes.Get(ctx, "9876543210")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	err = env.svc.VerifyOTP(ctx, "9876543210", wrong)
	appErr = wantKind(t, err, apperror.KindUnauthenticated)
	if appErr.Message != "invalid otp" {
		t.Fatalf("expected invalid otp, got %q", appErr.Message)
	}

	if err := env.svc.VerifyOTP(ctx, "9876543210", code); err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	user, err := env.users.FindByMobile(ctx, "9876543210")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if !user.Verified {
		t.Fatalf("expected account to be verified")
	}
}

func TestSendOTPUnknownMobile(t *testing.T) {
	env := newTestService(nil)

	// no enumeration: issuing for an unregistered number succeeds
	if err := env.svc.SendOTP(context.Background(), "9999999999"); err != nil {
		t.Fatalf("send otp for unknown mobile: %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	env := newTestService(nil)
	registerFarmer(t, env)
	ctx := context.Background()

	if err := env.svc.SendOTP(ctx, "9876543210"); err != nil {
		t.Fatalf("send otp: %v", err)
	}
	code, _ := env.codes.Get(ctx, "9876543210")

	if err := env.svc.ResetPassword(ctx, "9876543210", code, "NewPass9"); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	_, err := env.svc.Login(ctx, LoginInput{Mobile: "9876543210", Password: "Abc123"})
	wantKind(t, err, apperror.KindUnauthenticated)

	if _, err := env.svc.Login(ctx, LoginInput{Mobile: "9876543210", Password: "NewPass9"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestMe(t *testing.T) {
	env := newTestService(nil)
	result := registerFarmer(t, env)

	user, rec, err := env.svc.Me(context.Background(), result.User.ID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if user.ID != result.User.ID {
		t.Fatalf("expected user %s, got %s", result.User.ID, user.ID)
	}
	if rec == nil || rec.Farmer == nil {
		t.Fatalf("expected farmer profile, got %+v", rec)
	}
}

func TestUpdateAccount(t *testing.T) {
	env := newTestService(nil)
	result := registerFarmer(t, env)
	ctx := context.Background()

	bad := "not-an-email"
	_, err := env.svc.UpdateAccount(ctx, result.User.ID, identity.Patch{Email: &bad})
	wantKind(t, err, apperror.KindValidation)

	good := "Ram.Patil@Example.com"
	user, err := env.svc.UpdateAccount(ctx, result.User.ID, identity.Patch{Email: &good})
	if err != nil {
		t.Fatalf("update account: %v", err)
	}
	if user.Email != "ram.patil@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
}
