package service

import (
	"log"

	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/validation"
)

// SeedSampleData loads a starter semester with a handful of words so a
// fresh install has something to drill. Refuses to run once any
// semester exists.
func SeedSampleData(semesters *repository.SemesterRepository, words *repository.WordRepository) error {
	existing, err := semesters.ListAll()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return validation.Errorf("database already has semesters; seeding skipped")
	}

	sem := &models.Semester{
		Name:        "Starter Words",
		Slug:        "starter-words",
		Description: "A small sample list for trying the app",
		IsActive:    true,
	}
	if err := semesters.Create(sem); err != nil {
		return err
	}

	sample := []struct {
		word, phonetic, meaning, exampleEn, exampleCn string
	}{
		{"apple", "/ˈæp.əl/", "苹果", "She ate an apple for breakfast.", "她早餐吃了一个苹果。"},
		{"book", "/bʊk/", "书", "This book is very interesting.", "这本书很有趣。"},
		{"computer", "/kəmˈpjuː.tər/", "电脑", "He works on his computer every day.", "他每天用电脑工作。"},
		{"friend", "/frend/", "朋友", "My best friend lives next door.", "我最好的朋友住在隔壁。"},
		{"happy", "/ˈhæp.i/", "快乐的", "The children look very happy.", "孩子们看起来很快乐。"},
		{"learn", "/lɜːn/", "学习", "We learn something new every day.", "我们每天都学到新东西。"},
		{"morning", "/ˈmɔː.nɪŋ/", "早晨", "I go running every morning.", "我每天早晨去跑步。"},
		{"school", "/skuːl/", "学校", "The school is near the park.", "学校在公园附近。"},
		{"water", "/ˈwɔː.tər/", "水", "Please drink more water.", "请多喝水。"},
		{"yellow", "/ˈjel.əʊ/", "黄色的", "She wore a yellow dress.", "她穿了一条黄色的裙子。"},
	}

	batch := make([]*models.VocabWord, 0, len(sample))
	for i, s := range sample {
		batch = append(batch, &models.VocabWord{
			SemesterID: sem.ID,
			Word:       s.word,
			Phonetic:   s.phonetic,
			Meaning:    s.meaning,
			ExampleEn:  s.exampleEn,
			ExampleCn:  s.exampleCn,
			SortOrder:  i,
		})
	}

	if err := words.CreateBatch(batch); err != nil {
		return err
	}
	log.Printf("Seeded semester %q with %d words", sem.Name, len(batch))
	return nil
}
