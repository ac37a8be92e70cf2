package seeds

import (
	"log"

	"gorm.io/gorm"

	"sekolahku_backend/internals/seeds/demo"
)

// RunAllSeeds: path kosong = tidak ada seed.
func RunAllSeeds(db *gorm.DB, demoPath string) {
	if demoPath == "" {
		return
	}
	//* Demo school (admin, guru, kelas, mapel, siswa, sesi)
	if err := demo.SeedDemoFromJSON(db, demoPath); err != nil {
		log.Printf("❌ Seed demo gagal: %v", err)
	}
}
