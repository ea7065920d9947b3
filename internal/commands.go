package internal

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"pharmacy-admin-console/internal/constants"
	"pharmacy-admin-console/internal/core/domain"
	"pharmacy-admin-console/internal/core/store"
)

const usageText = `Usage: admin-console <command> [arguments]

Commands:
  login -email <email> -password <password>
  logout
  whoami
  list <resource> [-page N] [-search S] [-status S] [-role R] [-sort-by S] [-target-position P]
  set-status <resource> <id> <field> <value>
  create <resource> -data '<json>' [-image <file>]
  delete <resource> <id>

Resources: users, ads, ads-requests, contact-us, deals, drugs, pharmacies`

// dispatch разбирает команду консоли и выполняет соответствующую
// операцию стора. Консоль играет роль View: отображает снимок стора
// и диспатчит его действия.
func (a *App) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println(usageText)
		return fmt.Errorf("command is required")
	}

	switch args[0] {
	case "login":
		return a.cmdLogin(ctx, args[1:])
	case "logout":
		return a.session.Logout(ctx)
	case "whoami":
		return a.cmdWhoami()
	case "list":
		return a.cmdList(ctx, args[1:])
	case "set-status":
		return a.cmdSetStatus(ctx, args[1:])
	case "create":
		return a.cmdCreate(ctx, args[1:])
	case "delete":
		return a.cmdDelete(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Println(usageText)
		return nil
	default:
		fmt.Println(usageText)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "admin email")
	password := fs.String("password", "", "admin password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.session.Login(ctx, domain.Credentials{Email: *email, Password: *password}); err != nil {
		return err
	}

	account, _ := a.session.Account()
	fmt.Printf("Logged in as %s (%s)\n", account.Email, account.Role)
	return nil
}

func (a *App) cmdWhoami() error {
	account, ok := a.session.Account()
	if !ok || !a.session.IsAuthenticated() {
		fmt.Println("Not authenticated")
		return nil
	}
	fmt.Printf("%s <%s> role=%s admin=%t\n", account.FullName, account.Email, account.Role, a.session.IsAdmin())
	return nil
}

// requireSession - аналог route guard панели: операции с ресурсами
// доступны только аутентифицированному администратору.
func (a *App) requireSession() error {
	if !a.session.IsAuthenticated() {
		return domain.ErrNotAuthorized
	}
	return nil
}

func (a *App) cmdList(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("list: resource is required")
	}
	resource := args[0]

	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number (>= 1)")
	search := fs.String("search", "", "search text")
	status := fs.String("status", "", "status filter")
	role := fs.String("role", "", "role filter (users)")
	sortBy := fs.String("sort-by", "", "sort order")
	targetPosition := fs.String("target-position", "", "target position filter (ads)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	if err := a.requireSession(); err != nil {
		return err
	}

	filters := domain.Filters{
		Search:         *search,
		Status:         *status,
		Role:           *role,
		SortBy:         *sortBy,
		TargetPosition: *targetPosition,
	}

	switch resource {
	case constants.ResourceUsers:
		return listAndPrint(ctx, a.users, *page, filters)
	case constants.ResourceAds:
		return listAndPrint(ctx, a.ads, *page, filters)
	case constants.ResourceAdsRequests:
		return listAndPrint(ctx, a.adsRequests, *page, filters)
	case constants.ResourceContactUs:
		return listAndPrint(ctx, a.contactUs, *page, filters)
	case constants.ResourceDeals:
		return listAndPrint(ctx, a.deals, *page, filters)
	case constants.ResourceDrugs:
		return listAndPrint(ctx, a.drugs, *page, filters)
	case constants.ResourcePharmacies:
		return listAndPrint(ctx, a.pharmacies, *page, filters)
	default:
		return fmt.Errorf("unknown resource %q", resource)
	}
}

// listAndPrint загружает страницу (для ресурсов с агрегирующим
// эндпоинтом - и счётчики) и печатает снимок стора.
func listAndPrint[T domain.Entity](ctx context.Context, s *store.Store[T], page int, filters domain.Filters) error {
	if err := s.FetchPage(ctx, page, filters); err != nil {
		return err
	}

	// Страница за пределами коллекции - пустой хвост. Стор такую страницу
	// принимает как есть, решение за вызывающей стороной: показываем
	// последнюю существующую страницу вместо пустой.
	snap := s.Snapshot()
	if snap.Page.TotalPages >= 1 && snap.Page.Page > snap.Page.TotalPages {
		fmt.Printf("page %d is out of range, showing last page %d\n", snap.Page.Page, snap.Page.TotalPages)
		if err := s.FetchPage(ctx, snap.Page.TotalPages, filters); err != nil {
			return err
		}
	}

	// Счётчики обновляем лучшим доступным способом; их сбой
	// не должен прятать успешно загруженную страницу.
	_ = s.RefreshStats(ctx)

	snap = s.Snapshot()
	fmt.Printf("page %d/%d, total %d\n", snap.Page.Page, snap.Page.TotalPages, snap.Page.Total)
	for _, item := range snap.Items {
		line, err := json.Marshal(item)
		if err != nil {
			return err
		}
		fmt.Println(string(line))
	}
	if len(snap.Stats) > 0 {
		stats, _ := json.Marshal(snap.Stats)
		fmt.Printf("stats: %s\n", stats)
	}
	return nil
}

func (a *App) cmdSetStatus(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("set-status: expected <resource> <id> <field> <value>")
	}
	resource, id, field, value := args[0], args[1], args[2], args[3]

	if err := a.requireSession(); err != nil {
		return err
	}

	switch resource {
	case constants.ResourceUsers:
		payload, action, err := confirmBlockPayload(field, value)
		if err != nil {
			return err
		}
		return a.users.UpdateStatus(ctx, id, action, payload)
	case constants.ResourcePharmacies:
		payload, action, err := confirmBlockPayload(field, value)
		if err != nil {
			return err
		}
		return a.pharmacies.UpdateStatus(ctx, id, action, payload)
	case constants.ResourceAds:
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("ads status must be true or false: %w", err)
		}
		return a.ads.UpdateStatus(ctx, id, constants.PatchActionStatus, domain.PatchPayload{"status": enabled})
	case constants.ResourceDeals:
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("deals status must be true or false: %w", err)
		}
		return a.deals.UpdateStatus(ctx, id, constants.PatchActionStatus, domain.PatchPayload{"status": enabled})
	case constants.ResourceDrugs:
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("drugs status must be true or false: %w", err)
		}
		return a.drugs.UpdateStatus(ctx, id, constants.PatchActionStatus, domain.PatchPayload{"status": enabled})
	case constants.ResourceAdsRequests:
		// Строковые статусы заявок патчатся прямо в /{id}
		return a.adsRequests.UpdateStatus(ctx, id, "", domain.PatchPayload{"status": value})
	case constants.ResourceContactUs:
		return a.contactUs.UpdateStatus(ctx, id, "", domain.PatchPayload{"status": value})
	default:
		return fmt.Errorf("unknown resource %q", resource)
	}
}

// confirmBlockPayload переводит поле confirmed/blocked и строковое
// значение в PATCH-действие и полезную нагрузку.
func confirmBlockPayload(field, value string) (domain.PatchPayload, string, error) {
	if field != constants.PatchActionConfirmed && field != constants.PatchActionBlocked {
		return nil, "", fmt.Errorf("field must be %q or %q", constants.PatchActionConfirmed, constants.PatchActionBlocked)
	}
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return nil, "", fmt.Errorf("value must be true or false: %w", err)
	}
	return domain.PatchPayload{field: enabled}, field, nil
}

func (a *App) cmdCreate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("create: resource is required")
	}
	resource := args[0]

	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	data := fs.String("data", "", "item fields as a JSON object")
	imagePath := fs.String("image", "", "path to an image file to attach")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	if err := a.requireSession(); err != nil {
		return err
	}

	if *data == "" {
		return fmt.Errorf("create: -data is required")
	}
	var payload domain.PatchPayload
	if err := json.Unmarshal([]byte(*data), &payload); err != nil {
		return fmt.Errorf("create: -data must be a JSON object: %w", err)
	}

	// Изображение уходит отдельной multipart-частью
	var image *domain.ImageUpload
	if *imagePath != "" {
		raw, err := os.ReadFile(*imagePath)
		if err != nil {
			return fmt.Errorf("create: failed to read image file: %w", err)
		}
		image = &domain.ImageUpload{
			FileName:    filepath.Base(*imagePath),
			ContentType: mime.TypeByExtension(filepath.Ext(*imagePath)),
			Data:        raw,
		}
	}

	switch resource {
	case constants.ResourceAds:
		return a.ads.Create(ctx, payload, image)
	case constants.ResourceDeals:
		return a.deals.Create(ctx, payload, image)
	case constants.ResourceDrugs:
		return a.drugs.Create(ctx, payload, image)
	default:
		return fmt.Errorf("resource %q does not support create", resource)
	}
}

func (a *App) cmdDelete(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("delete: expected <resource> <id>")
	}
	resource, id := args[0], args[1]

	if err := a.requireSession(); err != nil {
		return err
	}

	switch resource {
	case constants.ResourceUsers:
		return a.users.Delete(ctx, id)
	case constants.ResourceAds:
		return a.ads.Delete(ctx, id)
	case constants.ResourceAdsRequests:
		return a.adsRequests.Delete(ctx, id)
	case constants.ResourceContactUs:
		return a.contactUs.Delete(ctx, id)
	case constants.ResourceDeals:
		return a.deals.Delete(ctx, id)
	case constants.ResourceDrugs:
		return a.drugs.Delete(ctx, id)
	case constants.ResourcePharmacies:
		return a.pharmacies.Delete(ctx, id)
	default:
		return fmt.Errorf("unknown resource %q", resource)
	}
}
