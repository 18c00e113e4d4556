package game

import (
	"encoding/binary"
	"hash/fnv"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// 合成音效参数
const (
	// ToneSampleRate 采样率，与 audio.NewContext 保持一致
	ToneSampleRate = 48000
	// toneDuration 每个提示音的时长（秒）
	toneDuration = 0.08
	// toneBaseHz / toneSpanHz 音高范围 [base, base+span)
	toneBaseHz = 330.0
	toneSpanHz = 660.0
)

// ToneSoundPlayer 刷怪提示音播放器
//
// 职责：
//   - 实现 SoundPlayer 协作者接口（刷怪错峰提示音）
//   - 每个提示音名称映射到固定音高，首次使用时合成 PCM 并缓存播放器
//
// context 为 nil 时进入降级模式：只记录日志，不发声（测试与无声环境使用）
type ToneSoundPlayer struct {
	context *audio.Context
	players map[string]*audio.Player
	volume  float64
	enabled bool

	// played 已播放次数（按提示音名称），用于调试显示
	played map[string]int
}

// NewToneSoundPlayer 创建提示音播放器
//
// 参数：
//   - ctx: ebiten 音频上下文，可为 nil
func NewToneSoundPlayer(ctx *audio.Context) *ToneSoundPlayer {
	return &ToneSoundPlayer{
		context: ctx,
		players: make(map[string]*audio.Player),
		volume:  0.5,
		enabled: true,
		played:  make(map[string]int),
	}
}

// PlayCue 播放提示音
func (p *ToneSoundPlayer) PlayCue(cue string) {
	if !p.enabled || cue == "" {
		return
	}
	p.played[cue]++

	if p.context == nil {
		return
	}

	player := p.getPlayer(cue)
	if player == nil {
		return
	}

	player.SetVolume(p.volume)
	if err := player.Rewind(); err != nil {
		log.Printf("[ToneSoundPlayer] Warning: Failed to rewind cue %s: %v", cue, err)
	}
	player.Play()
}

// SetVolume 设置音量（限制在 0.0 ~ 1.0）
func (p *ToneSoundPlayer) SetVolume(volume float64) {
	p.volume = math.Max(0, math.Min(1, volume))
}

// SetEnabled 开关提示音
func (p *ToneSoundPlayer) SetEnabled(enabled bool) {
	p.enabled = enabled
}

// Enabled 提示音是否开启
func (p *ToneSoundPlayer) Enabled() bool {
	return p.enabled
}

// PlayedCount 某个提示音的已播放次数
func (p *ToneSoundPlayer) PlayedCount(cue string) int {
	return p.played[cue]
}

// getPlayer 获取或创建提示音播放器
func (p *ToneSoundPlayer) getPlayer(cue string) *audio.Player {
	if player, ok := p.players[cue]; ok {
		return player
	}

	pcm := SynthesizeTone(CueFrequency(cue), toneDuration, ToneSampleRate)
	player := p.context.NewPlayerFromBytes(pcm)
	p.players[cue] = player
	return player
}

// CueFrequency 提示音名称到音高（Hz）的确定性映射
func CueFrequency(cue string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(cue))
	return toneBaseHz + float64(h.Sum32()%uint32(toneSpanHz))
}

// SynthesizeTone 合成一段带线性衰减包络的正弦波
// 输出格式：16 位有符号小端、双声道（ebiten audio 的默认格式）
func SynthesizeTone(freq, seconds float64, sampleRate int) []byte {
	frames := int(seconds * float64(sampleRate))
	if frames <= 0 {
		return nil
	}

	buf := make([]byte, frames*4)
	for i := 0; i < frames; i++ {
		envelope := 1 - float64(i)/float64(frames)
		v := math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)) * envelope
		sample := uint16(int16(v * math.MaxInt16 * 0.8))
		binary.LittleEndian.PutUint16(buf[i*4:], sample)
		binary.LittleEndian.PutUint16(buf[i*4+2:], sample)
	}
	return buf
}
