package entity

import "testing"

func TestRegisterComboKill(t *testing.T) {
	tests := []struct {
		name        string
		priorCombo  int
		priorExpiry float64
		wantCombo   int
	}{
		{name: "first kill ever starts a new chain at 2", priorCombo: 1, priorExpiry: 0, wantCombo: 2},
		{name: "kill within expiry window increments", priorCombo: 4, priorExpiry: 1.2, wantCombo: 5},
		{name: "kill after lapse restarts chain at 2, not 1", priorCombo: 7, priorExpiry: 0, wantCombo: 2},
		{name: "combo caps at 10", priorCombo: 10, priorExpiry: 0.5, wantCombo: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayer(1, "p")
			p.Combo = tt.priorCombo
			p.ComboExpiry = tt.priorExpiry

			got := p.RegisterComboKill()
			if got != tt.wantCombo {
				t.Errorf("RegisterComboKill() = %d, want %d", got, tt.wantCombo)
			}
			if p.ComboExpiry != 3.0 {
				t.Errorf("ComboExpiry after kill = %v, want 3.0", p.ComboExpiry)
			}
		})
	}
}

func TestComboLapseOnTimerExpiry(t *testing.T) {
	p := NewPlayer(1, "p")
	p.Combo = 5
	p.ComboExpiry = 0.04

	p.AdvanceTimers(0.05)

	if p.Combo != 1 {
		t.Errorf("Combo after lapse = %d, want 1", p.Combo)
	}
	if p.ComboExpiry != 0 {
		t.Errorf("ComboExpiry after lapse = %v, want 0", p.ComboExpiry)
	}
}

func TestKillAppliesDeathPenaltyCeiling(t *testing.T) {
	tests := []struct {
		name      string
		score     int
		wantScore int
	}{
		{name: "positive score rounds penalty up", score: 100, wantScore: 100 - 15},  // ceil(0.15*100)=15
		{name: "score of zero stays zero", score: 0, wantScore: 0},
		{name: "score needing ceiling rounds up by one", score: 10, wantScore: 10 - 2}, // 0.15*10=1.5 -> ceil 2
		{name: "negative score is never penalized further", score: -50, wantScore: -50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayer(1, "p")
			p.Score = tt.score
			p.Combo = 5
			p.ComboExpiry = 1
			p.KillStreak = 3
			p.ActivePowerUps[PowerUpShield] = 4

			p.Kill()

			if p.Score != tt.wantScore {
				t.Errorf("Score after Kill() = %d, want %d", p.Score, tt.wantScore)
			}
			if p.Alive {
				t.Error("Alive should be false after Kill()")
			}
			if p.Combo != 1 || p.ComboExpiry != 0 {
				t.Errorf("combo state after Kill() = (%d, %v), want (1, 0)", p.Combo, p.ComboExpiry)
			}
			if p.KillStreak != 0 {
				t.Errorf("KillStreak after Kill() = %d, want 0", p.KillStreak)
			}
			if len(p.ActivePowerUps) != 0 {
				t.Errorf("ActivePowerUps after Kill() should be empty, got %v", p.ActivePowerUps)
			}
			if p.RespawnRemaining <= 0 {
				t.Errorf("RespawnRemaining after Kill() = %v, want > 0", p.RespawnRemaining)
			}
		})
	}
}

func TestRegisterPvPKillStreakBonus(t *testing.T) {
	p := NewPlayer(1, "killer")

	for i := 1; i <= 3; i++ {
		award := p.RegisterPvPKill()
		if i == 3 {
			if award != 300 {
				t.Errorf("3rd streak kill award = %d, want 300 (200 + 100 bonus)", award)
			}
		} else if award != 200 {
			t.Errorf("streak kill %d award = %d, want 200", i, award)
		}
	}
	if p.KillStreak != 3 {
		t.Errorf("KillStreak = %d, want 3", p.KillStreak)
	}
}

func TestApplyPowerUpReplacesRatherThanStacks(t *testing.T) {
	p := NewPlayer(1, "p")
	p.ApplyPowerUp(PowerUpRapidFire)
	p.ActivePowerUps[PowerUpRapidFire] = 4.0 // simulate time having passed since pickup

	p.ApplyPowerUp(PowerUpRapidFire)

	if p.ActivePowerUps[PowerUpRapidFire] != 8.0 {
		t.Errorf("RapidFire remaining after second pickup = %v, want 8.0 (replaced, not stacked)",
			p.ActivePowerUps[PowerUpRapidFire])
	}
}

func TestInvincibleDuringShieldOrSpawn(t *testing.T) {
	p := NewPlayer(1, "p")
	if p.Invincible() {
		t.Fatal("fresh player should not be invincible")
	}

	p.SpawnInvincibilityRemain = 2.5
	if !p.Invincible() || !p.Blinking() {
		t.Error("player mid spawn-invincibility should be Invincible and Blinking")
	}

	p.SpawnInvincibilityRemain = 0
	p.ActivePowerUps[PowerUpShield] = 5
	if !p.Invincible() {
		t.Error("shielded player should be Invincible")
	}
	if p.Blinking() {
		t.Error("shield alone should not trigger the blink render hint")
	}
}

func TestFireCooldownRapidFire(t *testing.T) {
	p := NewPlayer(1, "p")
	base := p.FireCooldown()

	p.ActivePowerUps[PowerUpRapidFire] = 5
	boosted := p.FireCooldown()

	if boosted != base*0.4 {
		t.Errorf("FireCooldown with RapidFire = %v, want %v", boosted, base*0.4)
	}
}
