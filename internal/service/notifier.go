package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"taskflow/internal/mailer"
	"taskflow/internal/model"
	"taskflow/internal/repository"
	ws "taskflow/internal/websocket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const notificationSubject = "Nueva Notificación - Peticiones"

func petitionCreatedMessage(title string) string {
	return fmt.Sprintf("Se ha creado una nueva petición: %s", title)
}

func petitionStatusMessage(title, status string) string {
	return fmt.Sprintf("La petición '%s' ha cambiado de estado a %s.", title, status)
}

// Notifier computes the recipient set for a petition event and emits one
// notification record plus one best-effort email per recipient. It is called
// explicitly by the petition service after a successful create or qualifying
// status update; there is no save-hook registry.
type Notifier interface {
	PetitionCreated(ctx context.Context, petition *model.Petition)
	PetitionStatusChanged(ctx context.Context, petition *model.Petition)
}

type notifier struct {
	db               *gorm.DB
	notificationRepo repository.NotificationRepository
	mail             mailer.Mailer
	hub              *ws.Hub // nil when websockets are disabled (tests)
	petitionBaseURL  string
}

func NewNotifier(db *gorm.DB, notificationRepo repository.NotificationRepository, mail mailer.Mailer, hub *ws.Hub, petitionBaseURL string) Notifier {
	return &notifier{
		db:               db,
		notificationRepo: notificationRepo,
		mail:             mail,
		hub:              hub,
		petitionBaseURL:  petitionBaseURL,
	}
}

func (n *notifier) PetitionCreated(ctx context.Context, petition *model.Petition) {
	n.fanOut(ctx, petition, petitionCreatedMessage(petition.Title))
}

func (n *notifier) PetitionStatusChanged(ctx context.Context, petition *model.Petition) {
	n.fanOut(ctx, petition, petitionStatusMessage(petition.Title, petition.StatusApproval))
}

// recipients computes the de-duplicated recipient set:
//  1. every Admin user,
//  2. Managers of the petition's department,
//  3. Clients whose primary company is the petition's company,
//  4. Clients bridged to the petition's company via extra company links.
func (n *notifier) recipients(ctx context.Context, petition *model.Petition) ([]model.User, error) {
	seen := make(map[uuid.UUID]model.User)

	collect := func(users []model.User) {
		for _, u := range users {
			seen[u.ID] = u
		}
	}

	var admins []model.User
	if err := model.ScopeActive(n.db.WithContext(ctx)).
		Find(&admins, "role = ?", model.RoleAdmin).Error; err != nil {
		return nil, err
	}
	collect(admins)

	var managers []model.User
	if err := model.ScopeActive(n.db.WithContext(ctx)).
		Where("role = ?", model.RoleManager).
		Where("id IN (?)", n.db.Session(&gorm.Session{NewDB: true}).
			Model(&model.HumanResource{}).
			Select("user_id").
			Where("department_id = ? AND deleted_at IS NULL", petition.DepartmentID)).
		Find(&managers).Error; err != nil {
		return nil, err
	}
	collect(managers)

	var clients []model.User
	if err := model.ScopeActive(n.db.WithContext(ctx)).
		Where("role = ?", model.RoleClient).
		Where("id IN (?)", n.db.Session(&gorm.Session{NewDB: true}).
			Model(&model.HumanResource{}).
			Select("user_id").
			Where("company_id = ? AND deleted_at IS NULL", petition.CompanyID)).
		Find(&clients).Error; err != nil {
		return nil, err
	}
	collect(clients)

	var bridged []model.User
	if err := model.ScopeActive(n.db.WithContext(ctx)).
		Where("id IN (?)", n.db.Session(&gorm.Session{NewDB: true}).
			Model(&model.ClientCompany{}).
			Select("human_resources.user_id").
			Joins("JOIN human_resources ON human_resources.id = client_companies.human_resource_id").
			Where("client_companies.company_id = ?", petition.CompanyID)).
		Find(&bridged).Error; err != nil {
		return nil, err
	}
	collect(bridged)

	result := make([]model.User, 0, len(seen))
	for _, u := range seen {
		result = append(result, u)
	}
	return result, nil
}

// fanOut persists one notification per recipient, pushes the batch over the
// websocket hub, and attempts one email per recipient. Email failures are
// logged and swallowed so they never fail the triggering request.
func (n *notifier) fanOut(ctx context.Context, petition *model.Petition, message string) {
	users, err := n.recipients(ctx, petition)
	if err != nil {
		log.Printf("notification fan-out: recipient query failed: %v", err)
		return
	}
	if len(users) == 0 {
		return
	}

	notifications := make([]model.Notification, 0, len(users))
	for _, u := range users {
		notifications = append(notifications, model.Notification{
			RecipientID: u.ID,
			PetitionID:  petition.ID,
			Message:     message,
			Status:      model.NotificationUnread,
		})
	}
	if err := n.notificationRepo.BulkCreate(ctx, notifications); err != nil {
		log.Printf("notification fan-out: bulk insert failed: %v", err)
		return
	}

	if n.hub != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"event":       "notification",
			"petition_id": petition.ID.String(),
			"message":     message,
		})
		recipientIDs := make([]uuid.UUID, 0, len(users))
		for _, u := range users {
			recipientIDs = append(recipientIDs, u.ID)
		}
		select {
		case n.hub.Notify <- ws.Notification{RecipientIDs: recipientIDs, Payload: payload}:
		default:
		}
	}

	petitionURL := fmt.Sprintf("%s/petitions/%s", n.petitionBaseURL, petition.ID)
	for _, u := range users {
		if u.Email == "" {
			continue
		}
		text := fmt.Sprintf("%s\n\nVer más en: %s", message, petitionURL)
		html := fmt.Sprintf("<p>%s</p><p><a href=%q>Ver petición</a></p>", message, petitionURL)
		if err := n.mail.Send(u.Email, notificationSubject, text, html); err != nil {
			log.Printf("notification fan-out: email to %s failed: %v", u.Email, err)
		}
	}
}
