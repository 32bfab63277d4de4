package domain

import "time"

type PlayState string

const (
	StatePlaying PlayState = "PLAYING"
	StatePaused  PlayState = "PAUSED"
)

// Player is the reference clock of a room: the last known position, the instant it was recorded
// and whether playback was running since then. The live position is derived on demand.
type Player struct {
	State     PlayState
	Position  float64
	UpdatedAt time.Time
}

func NewPlayer(now time.Time) *Player {
	return &Player{
		State:     StatePaused,
		Position:  0,
		UpdatedAt: now,
	}
}

func (p Player) IsPlaying() bool {
	return p.State == StatePlaying
}

// PositionAt estimates the playback offset in seconds at now.
func (p Player) PositionAt(now time.Time) float64 {
	if !p.IsPlaying() {
		return p.Position
	}

	elapsed := now.Sub(p.UpdatedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	return p.Position + elapsed
}

// Play and Pause only move the timestamp; the position is corrected by the next time report.
func (p *Player) Play(now time.Time) {
	p.State = StatePlaying
	p.UpdatedAt = now
}

func (p *Player) Pause(now time.Time) {
	p.State = StatePaused
	p.UpdatedAt = now
}

func (p *Player) Seek(position float64, now time.Time) {
	p.Position = position
	p.UpdatedAt = now
}

func (p *Player) Report(position float64, now time.Time) {
	p.Position = position
	p.UpdatedAt = now
}

// Restart rewinds to zero and starts playing, used whenever the current media changes.
func (p *Player) Restart(now time.Time) {
	p.State = StatePlaying
	p.Position = 0
	p.UpdatedAt = now
}
