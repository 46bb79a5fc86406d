package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ev "github.com/radieske/baaji-bet-platform/pkg/contracts/events"
)

func TestResultDeclaredText_PadsPatti(t *testing.T) {
	text := ResultDeclaredText(ev.ResultDeclared{
		Seq: 3, Date: "2026-04-01", Patti: 5, Single: 5, Winners: 2, TotalPayout: 5400,
	})
	assert.Contains(t, text, "patti 005")
	assert.Contains(t, text, "single 5")
	assert.Contains(t, text, "#3")
}

func TestRoundClosedText_ForcedVariant(t *testing.T) {
	forced := RoundClosedText(ev.RoundClosed{Seq: 2, Forced: true})
	timed := RoundClosedText(ev.RoundClosed{Seq: 2, Forced: false})
	assert.Contains(t, forced, "operador")
	assert.NotContains(t, timed, "operador")
}

func TestRenderPayoutCredited_TargetsUser(t *testing.T) {
	msg, err := RenderPayoutCredited([]byte(`{"round_id":9,"seq":4,"user_id":77,"amount":900}`))
	require.NoError(t, err)
	assert.Equal(t, int64(77), msg.UserID)
	assert.Contains(t, msg.Text, "900")
}

func TestRenderRoundOpened_Broadcast(t *testing.T) {
	msg, err := RenderRoundOpened([]byte(`{"round_id":1,"seq":1,"closes_at":"10:20"}`))
	require.NoError(t, err)
	assert.Zero(t, msg.UserID)
	assert.Contains(t, msg.Text, "10:20")
}

func TestRender_BadPayload(t *testing.T) {
	_, err := RenderRoundOpened([]byte("not json"))
	assert.Error(t, err)
	_, err = RenderResultDeclared([]byte("{"))
	assert.Error(t, err)
}
