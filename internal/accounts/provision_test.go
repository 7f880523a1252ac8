package accounts

import (
	"context"
	"io"
	"testing"
	"time"

	pkgAuth "github.com/RemyAthisayaa17/mceverse/pkg/auth"
	"github.com/RemyAthisayaa17/mceverse/pkg/config"
	"github.com/RemyAthisayaa17/mceverse/pkg/enums"
	pkgerrors "github.com/RemyAthisayaa17/mceverse/pkg/errors"
	"github.com/RemyAthisayaa17/mceverse/pkg/logger"
	"github.com/RemyAthisayaa17/mceverse/pkg/metrics"
	"github.com/rs/zerolog"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "mceverse",
		ExpirationMinutes: 30,
	}
}

func testProvisioningConfig() config.ProvisioningConfig {
	return config.ProvisioningConfig{
		SessionWaitAttempts: 3,
		SessionWaitBackoff:  time.Millisecond,
		InsertRetryBackoff:  time.Millisecond,
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "test",
		Level:       zerolog.Disabled,
		Output:      io.Discard,
	})
}

type provisionSetup struct {
	provisioner Provisioner
	identities  *stubIdentityRepo
	profiles    *stubProfileRepo
	session     *stubSessionManager
}

func newProvisionSetup(t *testing.T, cfg config.ProvisioningConfig) *provisionSetup {
	t.Helper()
	identityRepo := newStubIdentityRepo()
	profileRepo := newStubProfileRepo()
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token"}
	p, err := NewProvisioner(ProvisionerParams{
		IdentityRepo:   identityRepo,
		ProfileRepo:    profileRepo,
		SessionManager: sessionMgr,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: config.PasswordConfig{MinLength: 6},
		Provisioning:   cfg,
		Metrics:        metrics.NewProvisioningMetrics(nil),
		Logger:         testLogger(),
	})
	if err != nil {
		t.Fatalf("new provisioner: %v", err)
	}
	return &provisionSetup{
		provisioner: p,
		identities:  identityRepo,
		profiles:    profileRepo,
		session:     sessionMgr,
	}
}

func sampleStudentRequest(email string) RegistrationRequest {
	return RegistrationRequest{
		Email:          email,
		Password:       "secret123",
		FullName:       "Sample Student",
		Role:           enums.RoleStudent,
		Department:     "Computer Science",
		AcademicYear:   "2nd Year",
		RegisterNumber: "CS2023042",
	}
}

func TestProvisionerSignUpHappyPath(t *testing.T) {
	setup := newProvisionSetup(t, testProvisioningConfig())

	result, err := setup.provisioner.SignUp(context.Background(), sampleStudentRequest("new@college.edu"))
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if result.Status != StatusComplete {
		t.Fatalf("expected complete status, got %s", result.Status)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected session tokens on direct signup")
	}
	if len(setup.profiles.base) != 1 {
		t.Fatalf("expected one base profile, got %d", len(setup.profiles.base))
	}
	if len(setup.profiles.students) != 1 {
		t.Fatalf("expected one student profile, got %d", len(setup.profiles.students))
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), result.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.RoleStudent {
		t.Fatalf("expected student role claim, got %s", claims.Role)
	}
	if claims.UserID != result.UserID {
		t.Fatal("token user id does not match created identity")
	}
}

func TestProvisionerSignUpDuplicateEmail(t *testing.T) {
	setup := newProvisionSetup(t, testProvisioningConfig())
	req := sampleStudentRequest("taken@college.edu")

	if _, err := setup.provisioner.SignUp(context.Background(), req); err != nil {
		t.Fatalf("first sign up: %v", err)
	}

	_, err := setup.provisioner.SignUp(context.Background(), req)
	if err == nil {
		t.Fatal("expected conflict for duplicate email")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
}

func TestProvisionerSignUpValidatesRoleFields(t *testing.T) {
	setup := newProvisionSetup(t, testProvisioningConfig())
	req := sampleStudentRequest("invalid@college.edu")
	req.RegisterNumber = ""

	_, err := setup.provisioner.SignUp(context.Background(), req)
	if err == nil {
		t.Fatal("expected validation error for missing register number")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
	if setup.identities.createCalls != 0 {
		t.Fatal("identity must not be created for invalid payloads")
	}
}

func TestProvisionerSignUpPendingVerification(t *testing.T) {
	cfg := testProvisioningConfig()
	cfg.RequireEmailVerification = true
	setup := newProvisionSetup(t, cfg)

	result, err := setup.provisioner.SignUp(context.Background(), sampleStudentRequest("verify@college.edu"))
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if result.Status != StatusPendingVerification {
		t.Fatalf("expected pending verification, got %s", result.Status)
	}
	if result.AccessToken != "" || result.RefreshToken != "" {
		t.Fatal("unverified accounts must not receive tokens")
	}
	if setup.profiles.insertBaseCalls != 0 || setup.profiles.ensureStudentCalls != 0 {
		t.Fatal("profile writes must wait for verification")
	}
}

func TestProvisionerSignUpRetriesBaseInsertOnce(t *testing.T) {
	setup := newProvisionSetup(t, testProvisioningConfig())
	setup.profiles.insertBaseFailures = 1

	result, err := setup.provisioner.SignUp(context.Background(), sampleStudentRequest("retry@college.edu"))
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if result.Status != StatusComplete {
		t.Fatalf("expected complete after retry, got %s", result.Status)
	}
	if setup.profiles.insertBaseCalls != 2 {
		t.Fatalf("expected two insert attempts, got %d", setup.profiles.insertBaseCalls)
	}
	if setup.profiles.upsertBaseCalls != 0 {
		t.Fatal("elevated repair must not run when the retry succeeds")
	}
}

func TestProvisionerSignUpFallsBackToElevatedRepair(t *testing.T) {
	setup := newProvisionSetup(t, testProvisioningConfig())
	setup.profiles.insertBaseFailures = 10

	result, err := setup.provisioner.SignUp(context.Background(), sampleStudentRequest("repairme@college.edu"))
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if result.Status != StatusComplete {
		t.Fatalf("expected complete via repair, got %s", result.Status)
	}
	if setup.profiles.insertBaseCalls != 2 {
		t.Fatalf("expected exactly two insert attempts before repair, got %d", setup.profiles.insertBaseCalls)
	}
	if setup.profiles.upsertBaseCalls != 1 {
		t.Fatalf("expected one elevated repair, got %d", setup.profiles.upsertBaseCalls)
	}
}

func TestProvisionerSignUpToleratesRoleProfileFailure(t *testing.T) {
	setup := newProvisionSetup(t, testProvisioningConfig())
	setup.profiles.ensureStudentErr = duplicateErr("disk full")

	result, err := setup.provisioner.SignUp(context.Background(), sampleStudentRequest("lenient@college.edu"))
	if err != nil {
		t.Fatalf("sign up must not fail when role profile write fails: %v", err)
	}

	if result.Status != StatusProfileIncomplete {
		t.Fatalf("expected profile_incomplete status, got %s", result.Status)
	}
	if result.AccessToken == "" {
		t.Fatal("tokens are still issued when only the role profile is missing")
	}
	if setup.profiles.ensureStudentCalls != 2 {
		t.Fatalf("expected one retry on the role profile, got %d calls", setup.profiles.ensureStudentCalls)
	}
}

func TestProvisionerSignUpStaffUsesStaffProfile(t *testing.T) {
	setup := newProvisionSetup(t, testProvisioningConfig())
	req := sampleStudentRequest("staff@college.edu")
	req.Role = enums.RoleStaff
	req.RegisterNumber = ""

	result, err := setup.provisioner.SignUp(context.Background(), req)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if result.Status != StatusComplete {
		t.Fatalf("expected complete status, got %s", result.Status)
	}
	if len(setup.profiles.staff) != 1 {
		t.Fatalf("expected one staff profile, got %d", len(setup.profiles.staff))
	}
	if len(setup.profiles.students) != 0 {
		t.Fatal("staff signup must not create a student profile")
	}
}
