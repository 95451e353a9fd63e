package listeners

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"isp-system/internal/events"
	"isp-system/internal/repositories"
	"isp-system/pkg/constants"
	"isp-system/pkg/eventbus"
	"isp-system/pkg/websocket"
)

// ===== ГРУППИРОВКА =====
// События одной транзакции по одной сущности уходят одним уведомлением.
type eventGroupKey struct {
	EntityType string
	EntityID   uint64
	TxID       uuid.UUID
}

type eventGroup struct {
	events []events.ActivityRecordedEvent
	timer  *time.Timer
}

// Notifier - то, чем доставляем уведомление. В проде это *websocket.Hub.
type Notifier interface {
	SendMessageToUser(userID uint64, payload interface{}, messageType string) error
}

// presence - необязательная часть Notifier: кто сейчас на связи.
type presence interface {
	IsOnline(userID uint64) bool
}

var _ presence = (*websocket.Hub)(nil)

type NotificationListener struct {
	notifier Notifier
	userRepo repositories.UserRepositoryInterface
	window   time.Duration
	logger   *zap.Logger
	groups   map[eventGroupKey]*eventGroup
	groupsMu sync.Mutex
}

func NewNotificationListener(
	notifier Notifier,
	userRepo repositories.UserRepositoryInterface,
	window time.Duration,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		notifier: notifier,
		userRepo: userRepo,
		window:   window,
		logger:   logger,
		groups:   make(map[eventGroupKey]*eventGroup),
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.ActivityRecorded, l.handleActivityRecorded)
	l.logger.Info("NotificationListener подписан на событие", zap.String("event", events.ActivityRecorded))
}

// handleActivityRecorded собирает события в группы и откладывает отправку на window.
func (l *NotificationListener) handleActivityRecorded(_ context.Context, event eventbus.Event) error {
	e, ok := event.(events.ActivityRecordedEvent)
	if !ok || len(e.Recipients) == 0 {
		return nil
	}

	key := eventGroupKey{
		EntityType: e.Log.EntityType,
		EntityID:   e.Log.EntityID,
		TxID:       e.Log.TxID,
	}

	l.groupsMu.Lock()
	defer l.groupsMu.Unlock()

	group, exists := l.groups[key]
	if !exists {
		group = &eventGroup{}
		l.groups[key] = group
		group.timer = time.AfterFunc(l.window, func() {
			l.sendGroupedNotification(context.Background(), key)
		})
	}
	group.events = append(group.events, e)
	l.logger.Debug("Событие добавлено в группу",
		zap.String("entity", key.EntityType),
		zap.Uint64("entityID", key.EntityID),
		zap.Int("totalInGroup", len(group.events)),
	)
	return nil
}

func (l *NotificationListener) sendGroupedNotification(ctx context.Context, key eventGroupKey) {
	l.groupsMu.Lock()
	group, exists := l.groups[key]
	if !exists {
		l.groupsMu.Unlock()
		return
	}
	delete(l.groups, key)
	groupEvents := group.events
	l.groupsMu.Unlock()

	if len(groupEvents) == 0 {
		return
	}
	sort.Slice(groupEvents, func(i, j int) bool {
		return groupEvents[i].Log.CreatedAt.Before(groupEvents[j].Log.CreatedAt)
	})

	recipients := l.onlineRecipients(determineRecipients(groupEvents))
	if len(recipients) == 0 {
		return
	}

	payload := l.formatPayload(ctx, groupEvents)
	for _, userID := range recipients {
		if err := l.notifier.SendMessageToUser(userID, payload, websocket.TypeNotification); err != nil {
			l.logger.Error("Не удалось отправить WebSocket-уведомление", zap.Uint64("userID", userID), zap.Error(err))
		}
	}
}

// Flush немедленно отправляет все накопленные группы. Вызывается при остановке.
func (l *NotificationListener) Flush() {
	l.groupsMu.Lock()
	keys := make([]eventGroupKey, 0, len(l.groups))
	for key, group := range l.groups {
		group.timer.Stop()
		keys = append(keys, key)
	}
	l.groupsMu.Unlock()

	if len(keys) > 0 {
		l.logger.Info("Отправка отложенных уведомлений", zap.Int("groups", len(keys)))
	}
	for _, key := range keys {
		l.sendGroupedNotification(context.Background(), key)
	}
}

// onlineRecipients отсекает тех, кого нет в сети, если Notifier это знает.
func (l *NotificationListener) onlineRecipients(ids []uint64) []uint64 {
	p, ok := l.notifier.(presence)
	if !ok {
		return ids
	}
	online := ids[:0]
	for _, id := range ids {
		if p.IsOnline(id) {
			online = append(online, id)
			continue
		}
		l.logger.Debug("Пользователь не в сети, уведомление не доставлено в реальном времени", zap.Uint64("userID", id))
	}
	return online
}

// determineRecipients - объединение получателей группы без автора действия.
func determineRecipients(groupEvents []events.ActivityRecordedEvent) []uint64 {
	seen := make(map[uint64]struct{})
	for _, e := range groupEvents {
		for _, id := range e.Recipients {
			if id > 0 {
				seen[id] = struct{}{}
			}
		}
	}
	for _, e := range groupEvents {
		if e.Log.ActorID != nil {
			delete(seen, *e.Log.ActorID)
		}
	}

	ids := make([]uint64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (l *NotificationListener) formatPayload(ctx context.Context, groupEvents []events.ActivityRecordedEvent) *websocket.NotificationPayload {
	first := groupEvents[0].Log

	actor := websocket.ActorInfo{Name: "Система"}
	if first.ActorID != nil {
		actor.ID = *first.ActorID
		if user, err := l.userRepo.FindByID(ctx, nil, *first.ActorID); err == nil {
			actor.Name = user.Fio
		} else {
			l.logger.Warn("Не удалось загрузить автора уведомления", zap.Uint64("actorID", *first.ActorID), zap.Error(err))
		}
	}

	title := entityTitle(first.EntityType, first.EntityID)
	changes := make([]websocket.ChangeInfo, 0, len(groupEvents))
	for _, e := range groupEvents {
		changes = append(changes, websocket.ChangeInfo{Action: e.Log.Action, Text: actionText(e.Log.Action)})
	}

	message := fmt.Sprintf("<strong>%s</strong> обновил(а) %s", actor.Name, title)
	if len(groupEvents) == 1 {
		message = fmt.Sprintf("<strong>%s</strong>: %s %s", actor.Name, actionText(first.Action), title)
	}

	return &websocket.NotificationPayload{
		EventID:    uuid.New().String(),
		EntityType: first.EntityType,
		EntityID:   first.EntityID,
		IsRead:     false,
		Actor:      actor,
		Message:    message,
		Changes:    changes,
		Link:       fmt.Sprintf("/%ss/%d", first.EntityType, first.EntityID),
		CreatedAt:  first.CreatedAt,
	}
}

var entityNames = map[string]string{
	constants.EntityOperator:     "оператора",
	constants.EntityUser:         "пользователя",
	constants.EntityPlan:         "тариф",
	constants.EntitySubscription: "подписку",
	constants.EntityComplaint:    "жалобу",
	constants.EntityTicket:       "тикет",
	constants.EntityTask:         "задачу",
	constants.EntityPayment:      "платёж",
	constants.EntityAttendance:   "отметку посещаемости",
	constants.EntityLeave:        "заявку на отпуск",
	constants.EntityVendor:       "поставщика",
	constants.EntityInventory:    "позицию склада",
	constants.EntityOrder:        "закупку",
	constants.EntityReturn:       "возврат",
	constants.EntityShipment:     "доставку",
	constants.EntityRole:         "роль",
}

func entityTitle(entityType string, id uint64) string {
	name, ok := entityNames[entityType]
	if !ok {
		name = entityType
	}
	return fmt.Sprintf("<strong>%s №%d</strong>", name, id)
}

var actionTexts = map[string]string{
	constants.ActionCreated:       "создание",
	constants.ActionUpdated:       "изменение",
	constants.ActionDeleted:       "удаление",
	constants.ActionStatusChanged: "смена статуса",
	constants.ActionAssigned:      "назначение",
	constants.ActionEscalated:     "эскалация",
	constants.ActionAdjusted:      "корректировка остатка",
	constants.ActionImported:      "импорт",
	constants.ActionReviewed:      "рассмотрение",
	constants.ActionAttached:      "вложение",
	constants.ActionCheckIn:       "приход",
	constants.ActionCheckOut:      "уход",
	constants.ActionPasswordReset: "смена пароля",
	constants.ActionPermissions:   "смена привилегий",
}

func actionText(action string) string {
	if text, ok := actionTexts[action]; ok {
		return text
	}
	return action
}
