package game

import (
	"errors"
	"testing"

	"github.com/decker502/arenawaves/pkg/types"
)

// TestGetOrRegisterIdempotent 同名两次注册返回完全相同的类型
func TestGetOrRegisterIdempotent(t *testing.T) {
	r := NewKindRegistry()

	first, err := r.GetOrRegister("drone")
	if err != nil {
		t.Fatalf("GetOrRegister failed: %v", err)
	}
	second, err := r.GetOrRegister("drone")
	if err != nil {
		t.Fatalf("GetOrRegister failed: %v", err)
	}

	if first != second {
		t.Errorf("Expected identical kinds, got %v and %v", first, second)
	}
	if r.Len() != 1 {
		t.Errorf("Expected 1 registered kind, got %d", r.Len())
	}
}

// TestGetOrRegisterEmptyName 空名称是契约违规
func TestGetOrRegisterEmptyName(t *testing.T) {
	r := NewKindRegistry()

	kind, err := r.GetOrRegister("")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Expected ErrInvalidArgument, got %v", err)
	}
	if !kind.IsNone() {
		t.Errorf("Expected NoneKind on error, got %v", kind)
	}
	if r.Len() != 0 {
		t.Error("Registry should not change on error")
	}
}

// TestGetOrRegisterAllocatesLowestUnused 编码分配跳过底层路径已占用的编码
// 测试通过控制注册顺序固定编码，而不是硬编码期望值
func TestGetOrRegisterAllocatesLowestUnused(t *testing.T) {
	r := NewKindRegistry()

	if err := r.Register(2, "brute"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	a, _ := r.GetOrRegister("drone")
	b, _ := r.GetOrRegister("swarmer")
	c, _ := r.GetOrRegister("sniper")

	// 1 未被占用 -> drone；2 被 brute 占用 -> swarmer 跳到 3
	if a.Code != 1 || b.Code != 3 || c.Code != 4 {
		t.Errorf("Expected codes 1,3,4, got %d,%d,%d", a.Code, b.Code, c.Code)
	}

	kinds := r.Kinds()
	wantOrder := []string{"brute", "drone", "swarmer", "sniper"}
	for i, name := range wantOrder {
		if kinds[i].Name != name {
			t.Errorf("Kinds()[%d] = %q, want %q (insertion order)", i, kinds[i].Name, name)
		}
	}
}

// TestRegisterDuplicates 底层路径的重复键检查
func TestRegisterDuplicates(t *testing.T) {
	tests := []struct {
		name string
		code types.KindCode
		kind string
	}{
		{"duplicate code", 1, "other"},
		{"duplicate name", 7, "drone"},
		{"reserved code", 0, "ghost"},
		{"negative code", -3, "ghost"},
		{"empty name", 9, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewKindRegistry()
			if err := r.Register(1, "drone"); err != nil {
				t.Fatalf("setup failed: %v", err)
			}

			err := r.Register(tt.code, tt.kind)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument, got %v", err)
			}
			if r.Len() != 1 {
				t.Errorf("Registry should be unchanged, got %d kinds", r.Len())
			}
		})
	}
}

// TestLookupReturnsNoneKind 查询失败返回哨兵类型而不是错误
func TestLookupReturnsNoneKind(t *testing.T) {
	r := NewKindRegistry()
	drone, _ := r.GetOrRegister("drone")

	if got := r.LookupName("drone"); got != drone {
		t.Errorf("LookupName = %v, want %v", got, drone)
	}
	if got := r.LookupCode(drone.Code); got != drone {
		t.Errorf("LookupCode = %v, want %v", got, drone)
	}
	if got := r.LookupName("missing"); !got.IsNone() {
		t.Errorf("Expected NoneKind for unknown name, got %v", got)
	}
	if got := r.LookupCode(99); !got.IsNone() {
		t.Errorf("Expected NoneKind for unknown code, got %v", got)
	}
}
