// Package seed loads rooms and an initial administrator into a fresh database.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"hostel/internal/errors"
	"hostel/internal/service"
)

// Room is one room entry of a seed file.
type Room struct {
	RoomNumber string `json:"room_number"`
	Floor      int    `json:"floor"`
	Capacity   int    `json:"capacity"`
	Rent       string `json:"rent,omitempty"`
}

// Admin is the administrator entry of a seed file.
type Admin struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	CNIC     string `json:"cnic"`
}

// Data is the content of a seed file.
type Data struct {
	Admin *Admin `json:"admin,omitempty"`
	Rooms []Room `json:"rooms"`
}

// Result reports what Apply changed.
type Result struct {
	RoomsCreated int  `json:"rooms_created"`
	RoomsSkipped int  `json:"rooms_skipped"`
	AdminCreated bool `json:"admin_created"`
}

// Fetch reads seed data from an http(s) URL or a local file.
func Fetch(ctx context.Context, source string) (*Data, error) {
	var body io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch seed data: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("seed source returned status: %d", resp.StatusCode)
		}
		body = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open seed file: %w", err)
		}
		body = f
	}
	defer body.Close()

	var data Data
	if err := json.NewDecoder(body).Decode(&data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &data, nil
}

// Apply creates the rooms and the administrator. Entries that already exist
// or are invalid are skipped, so running it twice is harmless.
func Apply(ctx context.Context, rooms service.RoomService, users service.UserService, data *Data) (Result, error) {
	var res Result

	for _, r := range data.Rooms {
		in := service.CreateRoomInput{RoomNumber: r.RoomNumber, Floor: r.Floor, Capacity: r.Capacity}
		if r.Rent != "" {
			rent, err := decimal.NewFromString(r.Rent)
			if err != nil {
				log.Printf("seed: skipping room %s with invalid rent %q", r.RoomNumber, r.Rent)
				res.RoomsSkipped++
				continue
			}
			in.Rent = &rent
		}

		_, err := rooms.Create(ctx, in)
		switch {
		case err == nil:
			res.RoomsCreated++
		case isDomainError(err):
			log.Printf("seed: skipping room %s (floor %d): %v", r.RoomNumber, r.Floor, err)
			res.RoomsSkipped++
		default:
			return res, fmt.Errorf("create room %s: %w", r.RoomNumber, err)
		}
	}

	if data.Admin != nil {
		_, err := users.CreateAdmin(ctx, service.AdminInput{
			Username: data.Admin.Username,
			Email:    data.Admin.Email,
			Password: data.Admin.Password,
			FullName: data.Admin.FullName,
			CNIC:     data.Admin.CNIC,
		})
		switch {
		case err == nil:
			res.AdminCreated = true
		case errors.Is(err, errors.ErrUserExists):
			log.Printf("seed: admin %s already exists", data.Admin.Username)
		default:
			return res, fmt.Errorf("create admin: %w", err)
		}
	}

	return res, nil
}

func isDomainError(err error) bool {
	var domainErr *errors.Error
	return errors.As(err, &domainErr) && domainErr.Kind != errors.KindInternal
}
