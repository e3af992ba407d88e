package interceptors

import (
	"context"
	"errors"
	"sync"
	"testing"

	"google.golang.org/grpc"

	identitydomain "promanage/backend/internal/identity/domain"
	"promanage/backend/internal/platform/rbac"
)

type auditCall struct {
	userID, action, resource string
	failed                   bool
}

// mockAuditLogger implements audit.AuditLogger for tests.
type mockAuditLogger struct {
	mu    sync.Mutex
	calls []auditCall
}

func (m *mockAuditLogger) LogEvent(ctx context.Context, userID, action, resource, resourceID string, metadata map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, auditCall{userID: userID, action: action, resource: resource, failed: metadata["failed"] == true})
}

func authedCtx() context.Context {
	return rbac.WithPrincipal(context.Background(), rbac.Principal{ID: "user-1", Role: identitydomain.RoleMember})
}

func TestAuditUnary_AuthenticatedRequest(t *testing.T) {
	logger := &mockAuditLogger{}
	interceptor := AuditUnary(logger, map[string]bool{})
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return "success", nil
	}

	resp, err := interceptor(authedCtx(), "request", &grpc.UnaryServerInfo{
		FullMethod: "/promanage.session.v1.SessionService/WhoAmI",
	}, handler)
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if resp != "success" {
		t.Errorf("response = %v", resp)
	}
	if len(logger.calls) != 1 {
		t.Fatalf("audit calls = %d, want 1", len(logger.calls))
	}
	want := auditCall{userID: "user-1", action: "whoami", resource: "session"}
	if logger.calls[0] != want {
		t.Errorf("call = %+v, want %+v", logger.calls[0], want)
	}
}

func TestAuditUnary_SkipsAnonymousAndSkipped(t *testing.T) {
	logger := &mockAuditLogger{}
	interceptor := AuditUnary(logger, map[string]bool{"/grpc.health.v1.Health/Check": true})
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return "success", nil
	}

	_, _ = interceptor(context.Background(), "request", &grpc.UnaryServerInfo{FullMethod: "/test.Service/SomeMethod"}, handler)
	_, _ = interceptor(authedCtx(), "request", &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, handler)
	if len(logger.calls) != 0 {
		t.Errorf("audit calls = %d, want 0", len(logger.calls))
	}
}

func TestAuditUnary_HandlerErrorStillAudited(t *testing.T) {
	logger := &mockAuditLogger{}
	interceptor := AuditUnary(logger, nil)
	boom := errors.New("boom")
	_, err := interceptor(authedCtx(), "request", &grpc.UnaryServerInfo{
		FullMethod: "/promanage.session.v1.SessionService/Logout",
	}, func(ctx context.Context, req interface{}) (interface{}, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if len(logger.calls) != 1 || !logger.calls[0].failed {
		t.Errorf("calls = %+v", logger.calls)
	}
}
