package systems

import (
	"github.com/decker502/arenawaves/pkg/ecs"
)

// fakeRealizer 记录实现层调用的测试替身
type fakeRealizer struct {
	nextMarker ecs.EntityID
	pending    []SpawnRequest
	realized   []SpawnRequest
	cancelled  []SpawnRequest
}

func (f *fakeRealizer) MarkPending(req SpawnRequest) ecs.EntityID {
	f.nextMarker++
	f.pending = append(f.pending, req)
	return 1000 + f.nextMarker
}

func (f *fakeRealizer) Realize(req SpawnRequest) {
	f.realized = append(f.realized, req)
}

func (f *fakeRealizer) Cancel(req SpawnRequest) {
	f.cancelled = append(f.cancelled, req)
}

// fakeSound 记录播放的提示音
type fakeSound struct {
	cues []string
}

func (f *fakeSound) PlayCue(cue string) {
	f.cues = append(f.cues, cue)
}

// fakeReporter 记录波次与阶段通知
type fakeReporter struct {
	waves  []int
	phases []string
}

func (f *fakeReporter) OnWaveCompleted(phase string, wave int) {
	f.waves = append(f.waves, wave)
}

func (f *fakeReporter) OnPhaseCompleted(phase string) {
	f.phases = append(f.phases, phase)
}
