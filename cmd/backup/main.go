package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"vocabdrill/internal/config"
	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
)

// backupFile is the JSON snapshot format written by -export and read
// by -import
type backupFile struct {
	CreatedAt time.Time            `json:"created_at"`
	Semesters []semesterBackup     `json:"semesters"`
	Users     []userBackup         `json:"users"`
	Progress  []progressBackup     `json:"progress"`
	Stats     []*models.StudyStats `json:"stats"`
}

type semesterBackup struct {
	models.Semester
	Words []*models.VocabWord `json:"words"`
}

// userBackup carries the password hash, which the API user model hides
type userBackup struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	IsAdmin      bool   `json:"is_admin"`
}

type progressBackup struct {
	Username string                  `json:"username"`
	Updates  []models.ProgressUpdate `json:"updates"`
}

func main() {
	exportPath := flag.String("export", "", "write a JSON backup to this file")
	importPath := flag.String("import", "", "restore a JSON backup from this file")
	flag.Parse()

	if (*exportPath == "") == (*importPath == "") {
		fmt.Fprintln(os.Stderr, "usage: backup -export FILE | -import FILE")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if *exportPath != "" {
		if err := runExport(db, *exportPath); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		return
	}
	if err := runImport(db, *importPath); err != nil {
		log.Fatalf("Import failed: %v", err)
	}
}

func runExport(db *database.DB, path string) error {
	semesterRepo := repository.NewSemesterRepository(db)
	wordRepo := repository.NewWordRepository(db)
	userRepo := repository.NewUserRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	backup := backupFile{CreatedAt: time.Now()}

	semesters, err := semesterRepo.ListAll()
	if err != nil {
		return err
	}
	for _, s := range semesters {
		words, err := wordRepo.ListBySemester(s.ID)
		if err != nil {
			return err
		}
		backup.Semesters = append(backup.Semesters, semesterBackup{Semester: s.Semester, Words: words})
	}

	users, err := userRepo.List()
	if err != nil {
		return err
	}
	for _, u := range users {
		backup.Users = append(backup.Users, userBackup{
			Username:     u.Username,
			PasswordHash: u.PasswordHash,
			IsAdmin:      u.IsAdmin,
		})
	}

	for _, u := range users {
		for _, s := range semesters {
			rows, err := progressRepo.ListWordsWithProgress(u.Username, s.ID)
			if err != nil {
				return err
			}
			var updates []models.ProgressUpdate
			for _, wp := range rows {
				p := wp.Progress
				if p == nil {
					continue
				}
				updates = append(updates, models.ProgressUpdate{
					WordID:       p.WordID,
					SemesterID:   p.SemesterID,
					State:        p.State,
					NextReview:   p.NextReview,
					EF:           p.EF,
					Interval:     p.Interval,
					FailureCount: p.FailureCount,
				})
			}
			if len(updates) > 0 {
				backup.Progress = append(backup.Progress, progressBackup{Username: u.Username, Updates: updates})
			}

			stats, err := statsRepo.ListByUser(u.Username, s.ID, 10000)
			if err != nil {
				return err
			}
			backup.Stats = append(backup.Stats, stats...)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(backup); err != nil {
		return err
	}

	log.Printf("Exported %d semesters, %d users to %s",
		len(backup.Semesters), len(backup.Users), path)
	return nil
}

func runImport(db *database.DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var backup backupFile
	if err := json.Unmarshal(data, &backup); err != nil {
		return fmt.Errorf("failed to parse backup file: %w", err)
	}

	semesterRepo := repository.NewSemesterRepository(db)
	wordRepo := repository.NewWordRepository(db)
	userRepo := repository.NewUserRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// Word IDs change across databases; remap progress through them
	wordIDMap := make(map[int64]int64)
	semesterIDMap := make(map[int64]int64)

	for _, sb := range backup.Semesters {
		sem := sb.Semester
		oldID := sem.ID
		sem.ID = 0
		if err := semesterRepo.Create(&sem); err != nil {
			return err
		}
		semesterIDMap[oldID] = sem.ID

		for _, w := range sb.Words {
			word := *w
			oldWordID := word.ID
			word.ID = 0
			word.SemesterID = sem.ID
			if err := wordRepo.Create(&word); err != nil {
				return err
			}
			wordIDMap[oldWordID] = word.ID
		}
	}

	for _, u := range backup.Users {
		existing, err := userRepo.GetByUsername(u.Username)
		if err != nil {
			return err
		}
		if existing == nil {
			user := &models.User{
				Username:     u.Username,
				PasswordHash: u.PasswordHash,
				IsAdmin:      u.IsAdmin,
			}
			if err := userRepo.Create(user); err != nil {
				return err
			}
		}
	}

	for _, pb := range backup.Progress {
		var updates []models.ProgressUpdate
		for _, u := range pb.Updates {
			wordID, ok := wordIDMap[u.WordID]
			if !ok {
				continue
			}
			u.WordID = wordID
			u.SemesterID = semesterIDMap[u.SemesterID]
			updates = append(updates, u)
		}
		if err := progressRepo.UpsertBatch(pb.Username, updates); err != nil {
			return err
		}
	}

	for _, s := range backup.Stats {
		semesterID, ok := semesterIDMap[s.SemesterID]
		if !ok {
			continue
		}
		if err := statsRepo.Increment(s.Username, semesterID, s.Date, s.NewCount, s.ReviewCount); err != nil {
			return err
		}
	}

	log.Printf("Imported %d semesters, %d users from %s",
		len(backup.Semesters), len(backup.Users), path)
	return nil
}
