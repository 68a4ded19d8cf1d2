package telegram

import (
	"context"
	"time"

	"go.uber.org/zap"

	"window-crm/internal/services"
)

const pollBatchLimit = 100

// Poller периодически забирает обновления через getUpdates и прогоняет их
// через тот же конвейер, что и webhook.
type Poller struct {
	gateway  *services.TelegramGatewayService
	interval time.Duration
	logger   *zap.Logger
}

func NewPoller(gateway *services.TelegramGatewayService, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{gateway: gateway, interval: interval, logger: logger}
}

// Run крутит цикл опроса до отмены контекста. Ошибка одного тика не
// останавливает поллер.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("Поллер Telegram запущен", zap.Duration("interval", p.interval))
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Поллер Telegram остановлен")
			return
		case <-ticker.C:
			if err := p.gateway.PollBatch(ctx, pollBatchLimit); err != nil {
				p.logger.Error("Ошибка опроса Telegram", zap.Error(err))
			}
		}
	}
}
