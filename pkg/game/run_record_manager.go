package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// RunRecord 跨局保存的战绩
// 刷怪引擎本身不持久化任何状态，战绩由比赛控制器写入
type RunRecord struct {
	BestWave      int `yaml:"bestWave"`      // 单阶段内到达的最高波次
	BestLevel     int `yaml:"bestLevel"`     // 单局累计完成的最高波数（关卡计数）
	PhasesCleared int `yaml:"phasesCleared"` // 历史累计完成的阶段数
	Runs          int `yaml:"runs"`          // 历史局数
}

// RunRecordManager 战绩管理器
// 负责战绩的加载、保存和内存管理
type RunRecordManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	record       *RunRecord
}

// 存储路径常量
const (
	recordObject   = "records"
	recordProperty = "arena"
)

// NewRunRecordManager 创建战绩管理器
//
// 参数：
//   - gdataManager: gdata 存储管理器，可为 nil（降级模式，仅内存）
//
// 加载失败不是致命错误，使用空战绩并记录警告。
func NewRunRecordManager(gdataManager *gdata.Manager) *RunRecordManager {
	rm := &RunRecordManager{
		gdataManager: gdataManager,
		record:       &RunRecord{},
	}

	if err := rm.Load(); err != nil {
		log.Printf("[RunRecordManager] Warning: Failed to load records: %v (starting fresh)", err)
	}

	return rm
}

// OpenRecordStorage 打开 gdata 存储
// 失败时返回 nil 与错误，调用方可以继续以降级模式运行
func OpenRecordStorage(appName string) (*gdata.Manager, error) {
	manager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open record storage: %w", err)
	}
	return manager, nil
}

// Load 从 gdata 加载战绩
func (rm *RunRecordManager) Load() error {
	if rm.gdataManager == nil {
		return nil
	}

	if !rm.gdataManager.ObjectPropExists(recordObject, recordProperty) {
		return nil
	}

	data, err := rm.gdataManager.LoadObjectProp(recordObject, recordProperty)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	record, err := decodeRunRecord(data)
	if err != nil {
		return err
	}

	rm.record = record
	log.Printf("[RunRecordManager] Records loaded: best wave %d, best level %d", record.BestWave, record.BestLevel)
	return nil
}

// Save 保存战绩到 gdata
// gdataManager 为 nil 时直接返回 nil（降级模式，不报错）
func (rm *RunRecordManager) Save() error {
	if rm.gdataManager == nil {
		return nil
	}

	data, err := encodeRunRecord(rm.record)
	if err != nil {
		return err
	}

	if err := rm.gdataManager.SaveObjectProp(recordObject, recordProperty, data); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}

	log.Printf("[RunRecordManager] Records saved")
	return nil
}

// Record 当前战绩
func (rm *RunRecordManager) Record() RunRecord {
	return *rm.record
}

// ObserveWave 记录一次波次完成
// 返回是否刷新了最高波次
func (rm *RunRecordManager) ObserveWave(wave, level int) bool {
	improved := false
	if wave > rm.record.BestWave {
		rm.record.BestWave = wave
		improved = true
	}
	if level > rm.record.BestLevel {
		rm.record.BestLevel = level
	}
	return improved
}

// ObservePhaseCleared 记录一次阶段完成
func (rm *RunRecordManager) ObservePhaseCleared() {
	rm.record.PhasesCleared++
}

// BeginRun 记录新的一局
func (rm *RunRecordManager) BeginRun() {
	rm.record.Runs++
}

func encodeRunRecord(record *RunRecord) ([]byte, error) {
	data, err := yaml.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal records: %w", err)
	}
	return data, nil
}

func decodeRunRecord(data []byte) (*RunRecord, error) {
	var record RunRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal records: %w", err)
	}
	if record.BestWave < 0 || record.BestLevel < 0 || record.PhasesCleared < 0 || record.Runs < 0 {
		return nil, fmt.Errorf("corrupt records: negative counter in %+v", record)
	}
	return &record, nil
}
