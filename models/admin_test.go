package models

import (
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&User{}, &Admin{}))
	return db
}

func TestSeedDefaultAdminsIsIdempotent(t *testing.T) {
	db := testDB(t)

	created, err := SeedDefaultAdmins(db)
	require.NoError(t, err)
	assert.Len(t, created, 3)

	// Second run must not touch anything
	created, err = SeedDefaultAdmins(db)
	require.NoError(t, err)
	assert.Empty(t, created)

	var count int64
	db.Model(&Admin{}).Count(&count)
	assert.EqualValues(t, 3, count)
}

func TestSeedDoesNotOverwriteExistingAccount(t *testing.T) {
	db := testDB(t)

	existing := Admin{
		Username:    "superadmin",
		FullName:    "Renamed By Operator",
		Role:        RoleSuperAdmin,
		Permissions: DefaultAdminPermissions(),
		IsActive:    true,
	}
	require.NoError(t, existing.SetPassword("operator-set"))
	require.NoError(t, db.Create(&existing).Error)

	_, err := SeedDefaultAdmins(db)
	require.NoError(t, err)

	var stored Admin
	require.NoError(t, db.Where("username = ?", "superadmin").First(&stored).Error)
	assert.Equal(t, "Renamed By Operator", stored.FullName, "seeding is matched by username, never re-created")
	assert.True(t, stored.CheckPassword("operator-set"))
}

func TestPasswordHashing(t *testing.T) {
	var user User
	require.NoError(t, user.SetPassword("hunter22"))

	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.True(t, strings.HasPrefix(user.PasswordHash, "$2"), "bcrypt hash")
	assert.True(t, user.CheckPassword("hunter22"))
	assert.False(t, user.CheckPassword("hunter2"))

	// Setting again produces a fresh, different hash
	first := user.PasswordHash
	require.NoError(t, user.SetPassword("hunter22"))
	assert.NotEqual(t, first, user.PasswordHash)
}

func TestUsernameGeneratedFromEmail(t *testing.T) {
	db := testDB(t)

	user := User{FirstName: "Sana", LastName: "Malik", Email: "sana.malik@example.com"}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, db.Create(&user).Error)

	assert.True(t, strings.HasPrefix(user.Username, "sana.malik-"))

	// A second user with the same local part still gets a unique username
	other := User{FirstName: "Sana", LastName: "Khan", Email: "sana.malik@other.example.com"}
	require.NoError(t, other.SetPassword("secret123"))
	require.NoError(t, db.Create(&other).Error)
	assert.NotEqual(t, user.Username, other.Username)
}
