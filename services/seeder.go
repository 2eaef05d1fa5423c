package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prepmate/backend/models"
	"github.com/prepmate/backend/repository"
	"golang.org/x/crypto/bcrypt"
)

// DatabaseSeeder handles database seeding operations
type DatabaseSeeder struct {
	repo *repository.GORMRepository
}

// NewDatabaseSeeder creates a new database seeder
func NewDatabaseSeeder(repo *repository.GORMRepository) *DatabaseSeeder {
	return &DatabaseSeeder{repo: repo}
}

// SeedDatabase seeds the badge catalog, learning resources and test users
// (idempotent).
func (s *DatabaseSeeder) SeedDatabase() error {
	ctx := context.Background()

	if err := s.seedBadges(ctx); err != nil {
		slog.Error("Failed to seed badges", "error", err)
	}
	if err := s.seedLearningResources(ctx); err != nil {
		slog.Error("Failed to seed learning resources", "error", err)
	}
	if err := s.seedUsers(ctx); err != nil {
		slog.Error("Failed to seed users", "error", err)
	}

	slog.Info("Database seeding completed")
	return nil
}

// seedBadges inserts the achievement catalog. Codes are unique, so reruns
// leave existing rows alone.
func (s *DatabaseSeeder) seedBadges(ctx context.Context) error {
	badges := []models.Badge{
		{
			Code: "first_interview", Name: "First Steps", NameVi: "Bước đầu tiên",
			Description:   "Complete your first interview session",
			DescriptionVi: "Hoàn thành buổi phỏng vấn đầu tiên",
			Icon:          "🎯", XPReward: 25,
			RequirementType: RequirementInterviews, RequirementValue: 1,
		},
		{
			Code: "interview_marathon", Name: "Marathon Runner", NameVi: "Người chạy bền",
			Description:   "Complete 10 interview sessions",
			DescriptionVi: "Hoàn thành 10 buổi phỏng vấn",
			Icon:          "🏃", XPReward: 100,
			RequirementType: RequirementInterviews, RequirementValue: 10,
		},
		{
			Code: "interview_master", Name: "Interview Master", NameVi: "Bậc thầy phỏng vấn",
			Description:   "Complete 25 interview sessions",
			DescriptionVi: "Hoàn thành 25 buổi phỏng vấn",
			Icon:          "🏆", XPReward: 250,
			RequirementType: RequirementInterviews, RequirementValue: 25,
		},
		{
			Code: "question_explorer", Name: "Question Explorer", NameVi: "Nhà khám phá câu hỏi",
			Description:   "Answer 50 interview questions",
			DescriptionVi: "Trả lời 50 câu hỏi phỏng vấn",
			Icon:          "❓", XPReward: 100,
			RequirementType: RequirementQuestions, RequirementValue: 50,
		},
		{
			Code: "question_centurion", Name: "Centurion", NameVi: "Chiến binh trăm trận",
			Description:   "Answer 100 interview questions",
			DescriptionVi: "Trả lời 100 câu hỏi phỏng vấn",
			Icon:          "⚔️", XPReward: 200,
			RequirementType: RequirementQuestions, RequirementValue: 100,
		},
		{
			Code: "streak_3", Name: "Warming Up", NameVi: "Khởi động",
			Description:   "Practice 3 days in a row",
			DescriptionVi: "Luyện tập 3 ngày liên tiếp",
			Icon:          "🔥", XPReward: 50,
			RequirementType: RequirementStreak, RequirementValue: 3,
		},
		{
			Code: "streak_7", Name: "On Fire", NameVi: "Bùng cháy",
			Description:   "Practice 7 days in a row",
			DescriptionVi: "Luyện tập 7 ngày liên tiếp",
			Icon:          "🔥", XPReward: 100,
			RequirementType: RequirementStreak, RequirementValue: 7,
		},
		{
			Code: "streak_30", Name: "Unstoppable", NameVi: "Không thể cản",
			Description:   "Practice 30 days in a row",
			DescriptionVi: "Luyện tập 30 ngày liên tiếp",
			Icon:          "👑", XPReward: 500,
			RequirementType: RequirementStreak, RequirementValue: 30,
		},
		{
			Code: "high_scorer", Name: "High Scorer", NameVi: "Điểm cao",
			Description:   "Score 4.0 or higher on an answer",
			DescriptionVi: "Đạt 4.0 điểm trở lên cho một câu trả lời",
			Icon:          "⭐", XPReward: 75,
			RequirementType: RequirementScore, RequirementValue: 4,
		},
		{
			Code: "perfectionist", Name: "Perfectionist", NameVi: "Người hoàn hảo",
			Description:   "Score a perfect 5.0 on an answer",
			DescriptionVi: "Đạt điểm tuyệt đối 5.0 cho một câu trả lời",
			Icon:          "💎", XPReward: 150,
			RequirementType: RequirementScore, RequirementValue: 5,
		},
	}

	for i := range badges {
		if err := s.repo.CreateBadge(ctx, &badges[i]); err != nil {
			return fmt.Errorf("failed to seed badge %s: %w", badges[i].Code, err)
		}
	}
	return nil
}

// seedLearningResources inserts curated study pointers for each of the
// four scored skills.
func (s *DatabaseSeeder) seedLearningResources(ctx context.Context) error {
	existing, err := s.repo.GetLearningResources(ctx, "")
	if err != nil {
		return fmt.Errorf("error checking learning resources: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("Learning resources already seeded, skipping", "count", len(existing))
		return nil
	}

	resources := []models.LearningResource{
		{
			Skill: "relevance", Title: "Trả lời đúng trọng tâm câu hỏi",
			Description:  "Kỹ thuật lắng nghe và phân tích câu hỏi để trả lời đúng điều nhà tuyển dụng muốn biết.",
			ResourceType: "article", Difficulty: "beginner",
		},
		{
			Skill: "relevance", Title: "Phương pháp mirror câu hỏi",
			Description:  "Luyện cách nhắc lại từ khóa của câu hỏi trong câu trả lời để giữ mạch nội dung.",
			ResourceType: "practice", Difficulty: "intermediate",
		},
		{
			Skill: "structure", Title: "Phương pháp STAR cho câu trả lời phỏng vấn",
			Description:  "Tình huống, Nhiệm vụ, Hành động, Kết quả - khung trả lời kinh điển cho câu hỏi hành vi.",
			ResourceType: "article", Difficulty: "beginner",
		},
		{
			Skill: "structure", Title: "Mở bài - thân bài - kết luận trong 90 giây",
			Description:  "Bài tập trình bày câu trả lời có cấu trúc rõ ràng trong giới hạn thời gian.",
			ResourceType: "practice", Difficulty: "intermediate",
		},
		{
			Skill: "depth", Title: "Đào sâu bằng câu hỏi 5 Whys",
			Description:  "Cách giải thích quyết định kỹ thuật với lý do gốc rễ thay vì mô tả bề mặt.",
			ResourceType: "article", Difficulty: "intermediate",
		},
		{
			Skill: "depth", Title: "Kể chuyện bằng số liệu",
			Description:  "Thêm chỉ số, quy mô và kết quả đo được vào câu trả lời để tăng sức thuyết phục.",
			ResourceType: "video", Difficulty: "advanced",
		},
		{
			Skill: "clarity", Title: "Loại bỏ từ đệm khi nói",
			Description:  "Nhận diện và giảm các từ đệm làm loãng câu trả lời.",
			ResourceType: "practice", Difficulty: "beginner",
		},
		{
			Skill: "clarity", Title: "Giải thích khái niệm kỹ thuật cho người không chuyên",
			Description:  "Luyện diễn đạt vấn đề phức tạp bằng ngôn ngữ đơn giản, ví dụ gần gũi.",
			ResourceType: "video", Difficulty: "intermediate",
		},
	}

	for i := range resources {
		if err := s.repo.CreateLearningResource(ctx, &resources[i]); err != nil {
			return fmt.Errorf("failed to seed resource %q: %w", resources[i].Title, err)
		}
	}
	return nil
}

// seedUsers creates test accounts (no admin users for security)
func (s *DatabaseSeeder) seedUsers(ctx context.Context) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	users := []models.User{
		{
			Email:    "test@example.com",
			Password: string(hashedPassword),
			FullName: "Test User",
			Role:     "user",
		},
		{
			Email:    "demo@example.com",
			Password: string(hashedPassword),
			FullName: "Demo User",
			Role:     "user",
		},
	}

	for _, user := range users {
		existing, err := s.repo.GetUserByEmail(ctx, user.Email)
		if err != nil {
			return fmt.Errorf("error checking user %s: %w", user.Email, err)
		}
		if existing != nil {
			slog.Info("User already exists, skipping", "email", user.Email)
			continue
		}
		if err := s.repo.CreateUser(ctx, &user); err != nil {
			return fmt.Errorf("failed to create user %s: %w", user.Email, err)
		}
		slog.Info("Created user", "email", user.Email)
	}
	return nil
}
