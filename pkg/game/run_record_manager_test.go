package game

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quasilyte/gdata/v2"
)

// createTestGdataManager 创建用于测试的 gdata Manager
// 受限环境下无法创建时返回 nil
func createTestGdataManager(t *testing.T, testName string) *gdata.Manager {
	appName := fmt.Sprintf("arenawaves_test_%s_%d", testName, time.Now().UnixNano())
	manager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil
	}

	// 测试结束后删除测试目录
	t.Cleanup(func() {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			os.RemoveAll(filepath.Join(homeDir, ".local", "share", appName))
		}
	})

	return manager
}

// TestRunRecordManagerNilSafe 降级模式：无存储时仅在内存中记录
func TestRunRecordManagerNilSafe(t *testing.T) {
	rm := NewRunRecordManager(nil)

	rm.BeginRun()
	if !rm.ObserveWave(3, 3) {
		t.Error("First observed wave should improve the record")
	}
	if rm.ObserveWave(2, 5) {
		t.Error("Lower wave should not improve the best wave")
	}
	rm.ObservePhaseCleared()

	if err := rm.Save(); err != nil {
		t.Errorf("Save in degraded mode should not fail, got %v", err)
	}

	got := rm.Record()
	want := RunRecord{BestWave: 3, BestLevel: 5, PhasesCleared: 1, Runs: 1}
	if got != want {
		t.Errorf("Record() = %+v, want %+v", got, want)
	}
}

// TestRunRecordPersistence 保存后用新的管理器重新加载
func TestRunRecordPersistence(t *testing.T) {
	manager := createTestGdataManager(t, "persist")
	if manager == nil {
		t.Skip("Cannot create gdata manager for testing")
	}

	rm := NewRunRecordManager(manager)
	rm.BeginRun()
	rm.ObserveWave(7, 12)
	if err := rm.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := NewRunRecordManager(manager)
	if got := reloaded.Record(); got.BestWave != 7 || got.BestLevel != 12 || got.Runs != 1 {
		t.Errorf("Reloaded record mismatch: %+v", got)
	}
}

// TestDecodeRunRecord 测试战绩解码与校验
func TestDecodeRunRecord(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"valid", "bestWave: 4\nbestLevel: 9\nphasesCleared: 2\nruns: 3\n", false},
		{"empty document", "", false},
		{"negative counter", "bestWave: -1\n", true},
		{"malformed yaml", "bestWave: [1, 2\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeRunRecord([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Errorf("decodeRunRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
