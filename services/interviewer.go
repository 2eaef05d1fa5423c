package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prepmate/backend/models"
)

const interviewTemperature = 0.7

// roleTopics drive question selection per role
var roleTopics = map[string][]string{
	"frontend":  {"React/Vue/Angular", "JavaScript/TypeScript", "CSS/Responsive Design", "State Management", "Performance Optimization", "Testing", "API Integration", "Accessibility"},
	"backend":   {"API Design", "Database", "System Design", "Security", "Caching", "Message Queues", "Authentication", "Microservices"},
	"fullstack": {"Full-stack Architecture", "Database Design", "Frontend Frameworks", "Backend Frameworks", "DevOps Basics", "API Design", "Security"},
	"data":      {"SQL/NoSQL", "Data Pipelines", "Machine Learning", "Data Visualization", "Statistics", "Big Data", "ETL Processes"},
	"qa":        {"Test Strategies", "Automation", "Bug Tracking", "Performance Testing", "API Testing", "CI/CD", "Test Coverage"},
	"ba":        {"Requirements Gathering", "Stakeholder Management", "Documentation", "Process Modeling", "User Stories", "Agile/Scrum"},
	"devops":    {"CI/CD", "Cloud Services", "Container/Docker", "Kubernetes", "Monitoring", "Infrastructure as Code", "Security"},
	"mobile":    {"iOS/Android", "React Native/Flutter", "Mobile UX", "App Performance", "Push Notifications", "Offline Storage", "App Security"},

	"marketing":        {"Digital Marketing", "SEO/SEM", "Content Marketing", "Social Media", "Analytics", "Brand Strategy", "Campaign Management", "Email Marketing"},
	"sales":            {"Sales Process", "Lead Generation", "Negotiation", "CRM", "Pipeline Management", "Customer Relationship", "Closing Techniques", "B2B/B2C Sales"},
	"hr":               {"Recruitment", "Employee Relations", "Performance Management", "Training & Development", "Labor Law", "Compensation & Benefits", "HR Policies", "Talent Management"},
	"finance":          {"Financial Analysis", "Budgeting", "Accounting Principles", "Financial Reporting", "Tax", "Auditing", "Cash Flow Management", "Investment Analysis"},
	"product":          {"Product Strategy", "Roadmap Planning", "User Research", "Agile/Scrum", "Stakeholder Management", "Metrics & KPIs", "Competitive Analysis", "Go-to-Market"},
	"design":           {"UI Design", "UX Research", "Prototyping", "Design Systems", "User Testing", "Figma/Sketch", "Interaction Design", "Visual Design"},
	"content":          {"Content Strategy", "Copywriting", "SEO Writing", "Social Media Content", "Video Content", "Editorial Planning", "Brand Voice", "Content Analytics"},
	"customer_service": {"Customer Communication", "Problem Resolution", "CRM Tools", "Service Quality", "Complaint Handling", "Customer Retention", "Empathy & Patience", "Product Knowledge"},
}

var levelExpectations = map[string]string{
	"intern": "basic concepts, willingness to learn, problem-solving approach",
	"junior": "fundamental knowledge, some practical experience, eagerness to grow",
	"mid":    "solid experience, independent work capability, good technical depth",
	"senior": "deep expertise, leadership, system design, mentoring ability",
}

var viInterviewerNames = []string{"Hương", "Lan", "Tuấn", "Hải", "Linh", "Đức", "Mai", "Phong"}
var enInterviewerNames = []string{"Alex", "Sarah", "Michael", "Emily", "David", "Jessica", "Chris", "Amanda"}

// InterviewerName returns a persona name that stays stable for the whole
// session: the session id hashes to a fixed index.
func InterviewerName(sessionID, language string) string {
	names := enInterviewerNames
	if language == "vi" {
		names = viInterviewerNames
	}

	sum := 0
	for _, c := range sessionID {
		sum += int(c)
	}
	if sum < 0 {
		sum = -sum
	}
	return names[sum%len(names)]
}

// QuestionRequest asks for the next interviewer turn. PreviousAnswer,
// PreviousScores and focus data are empty on the opening question.
type QuestionRequest struct {
	Session         *models.InterviewSession
	PreviousAnswer  string
	PreviousScores  *models.AnswerScores
	RaiseDifficulty bool
	FocusTags       []string
	QuestionIndex   int
	History         []ChatTurn
}

// InterviewerQuestion is one generated interviewer turn
type InterviewerQuestion struct {
	Question     string   `json:"question"`
	QuestionType string   `json:"questionType"`
	Difficulty   int      `json:"difficulty"`
	FocusTags    []string `json:"focusTags"`
}

// Interviewer generates the question side of a session: an opening turn and
// adaptive follow-ups that react to the previous answer's evaluation.
type Interviewer struct {
	groq *GroqService
}

func NewInterviewer(groq *GroqService) *Interviewer {
	return &Interviewer{groq: groq}
}

// StartInterview produces the greeting and opening question for a session.
func (i *Interviewer) StartInterview(ctx context.Context, session *models.InterviewSession) (*InterviewerQuestion, error) {
	var userPrompt string
	if session.Language == "vi" {
		userPrompt = "Bắt đầu buổi phỏng vấn với lời chào và câu hỏi mở đầu tự nhiên. Giới thiệu bản thân ngắn gọn trước."
	} else {
		userPrompt = "Start the interview with a greeting and natural opening question. Briefly introduce yourself first."
	}
	return i.complete(ctx, session, nil, userPrompt)
}

// NextQuestion produces the follow-up turn after an answer has been
// evaluated.
func (i *Interviewer) NextQuestion(ctx context.Context, req QuestionRequest) (*InterviewerQuestion, error) {
	session := req.Session
	isVietnamese := session.Language == "vi"

	scoreInfo := ""
	if req.PreviousScores != nil {
		scoreInfo = fmt.Sprintf("Overall: %.1f/5", req.PreviousScores.Overall)
	}

	var difficultyHint string
	if req.RaiseDifficulty {
		if isVietnamese {
			difficultyHint = "Ứng viên trả lời tốt, có thể tăng độ khó."
		} else {
			difficultyHint = "Candidate answered well, can increase difficulty."
		}
	} else {
		if isVietnamese {
			difficultyHint = "Giữ nguyên hoặc giảm độ khó."
		} else {
			difficultyHint = "Maintain or decrease difficulty."
		}
	}

	focus := "general"
	if len(req.FocusTags) > 0 {
		focus = strings.Join(req.FocusTags, ", ")
	}

	var userPrompt string
	if isVietnamese {
		userPrompt = fmt.Sprintf(`Câu trả lời của ứng viên: "%s"

Đánh giá: %s
%s

Tags cần tập trung: %s
Đây là câu hỏi thứ %d.

Hãy acknowledge câu trả lời và đưa ra câu hỏi tiếp theo phù hợp.`,
			req.PreviousAnswer, scoreInfo, difficultyHint, focus, req.QuestionIndex+1)
	} else {
		userPrompt = fmt.Sprintf(`Candidate's answer: "%s"

Assessment: %s
%s

Focus tags: %s
This is question %d.

Acknowledge the answer and provide the next appropriate question.`,
			req.PreviousAnswer, scoreInfo, difficultyHint, focus, req.QuestionIndex+1)
	}

	return i.complete(ctx, session, req.History, userPrompt)
}

func (i *Interviewer) complete(ctx context.Context, session *models.InterviewSession, history []ChatTurn, userPrompt string) (*InterviewerQuestion, error) {
	systemPrompt := buildInterviewerSystemPrompt(session)

	content, err := i.groq.CompleteJSONChat(ctx, systemPrompt, history, userPrompt, interviewTemperature)
	if err != nil {
		return nil, err
	}

	var question InterviewerQuestion
	if err := json.Unmarshal([]byte(content), &question); err != nil {
		return nil, &ParseError{Reason: "interviewer response is not valid JSON", Err: err}
	}
	if question.Question == "" {
		return nil, &ParseError{Reason: "interviewer response missing question text"}
	}

	slog.Info("Interview question generated",
		"session_id", session.ID,
		"question_type", question.QuestionType,
		"difficulty", question.Difficulty)

	return &question, nil
}

func buildInterviewerSystemPrompt(session *models.InterviewSession) string {
	topics, ok := roleTopics[session.Role]
	if !ok {
		topics = roleTopics["frontend"]
	}
	expectation, ok := levelExpectations[session.Level]
	if !ok {
		expectation = levelExpectations["junior"]
	}
	name := InterviewerName(session.ID, session.Language)

	var modeHint string
	switch session.Mode {
	case "behavioral":
		if session.Language == "vi" {
			modeHint = "- Tập trung vào kinh nghiệm, tình huống thực tế (STAR method)"
		} else {
			modeHint = "- Focus on experience, real situations (STAR method)"
		}
	case "technical":
		if session.Language == "vi" {
			modeHint = "- Tập trung vào kiến thức kỹ thuật, problem-solving"
		} else {
			modeHint = "- Focus on technical knowledge, problem-solving"
		}
	default:
		if session.Language == "vi" {
			modeHint = "- Kết hợp cả behavioral và technical questions"
		} else {
			modeHint = "- Combine both behavioral and technical questions"
		}
	}

	jdSection := ""
	if session.JDText != "" {
		if session.Language == "vi" {
			jdSection = "## JOB DESCRIPTION THAM KHẢO:\n" + session.JDText
		} else {
			jdSection = "## REFERENCE JOB DESCRIPTION:\n" + session.JDText
		}
	}

	if session.Language == "vi" {
		return fmt.Sprintf(`Bạn là một interviewer chuyên nghiệp với 10+ năm kinh nghiệm tuyển dụng %s. Bạn đang phỏng vấn ứng viên cấp độ %s.

## PERSONA
- Tên: %s
- Phong cách: Thân thiện nhưng chuyên nghiệp, biết cách tạo không khí thoải mái
- Kỹ năng: Biết cách khai thác câu trả lời, hỏi follow-up thông minh

## NGUYÊN TẮC QUAN TRỌNG
1. **MỖI LƯỢT CHỈ HỎI 1 CÂU** - Không bao giờ hỏi nhiều câu cùng lúc
2. **ACKNOWLEDGE** - Luôn ghi nhận câu trả lời trước khi hỏi tiếp (ví dụ: "Cảm ơn bạn đã chia sẻ...", "Điểm đó rất hay...")
3. **NATURAL FLOW** - Câu hỏi tiếp theo phải liên quan đến câu trả lời trước
4. **KHÔNG GIẢNG BÀI** - Không đưa ra đáp án, không dạy
5. **REALISTIC** - Hỏi như interviewer thật, không hỏi kiểu test

## EXPECTATION CHO CẤP ĐỘ %s
%s

## CHỦ ĐỀ KỸ THUẬT CHO %s
%s

## INTERVIEW MODE: %s
%s

%s

## OUTPUT FORMAT (JSON)
{
  "question": "Câu hỏi của bạn (bao gồm acknowledge nếu có câu trả lời trước)",
  "questionType": "opening|followup|new_topic|clarification",
  "difficulty": 1-5,
  "focusTags": ["tag1", "tag2"]
}`,
			session.Role, session.Level, name,
			strings.ToUpper(session.Level), expectation,
			strings.ToUpper(session.Role), strings.Join(topics, ", "),
			session.Mode, modeHint, jdSection)
	}

	return fmt.Sprintf(`You are a professional interviewer with 10+ years of experience hiring %ss. You're interviewing a %s-level candidate.

## PERSONA
- Name: %s
- Style: Friendly but professional, creates comfortable atmosphere
- Skills: Good at probing answers, asks smart follow-ups

## CRITICAL RULES
1. **ONE QUESTION PER TURN** - Never ask multiple questions at once
2. **ACKNOWLEDGE** - Always acknowledge previous answer before asking next (e.g., "Thanks for sharing...", "That's interesting...")
3. **NATURAL FLOW** - Next question should relate to previous answer
4. **NO LECTURING** - Don't give answers, don't teach
5. **REALISTIC** - Ask like a real interviewer, not like a test

## EXPECTATIONS FOR %s LEVEL
%s

## TECHNICAL TOPICS FOR %s
%s

## INTERVIEW MODE: %s
%s

%s

## OUTPUT FORMAT (JSON)
{
  "question": "Your question (include acknowledgement if there's a previous answer)",
  "questionType": "opening|followup|new_topic|clarification",
  "difficulty": 1-5,
  "focusTags": ["tag1", "tag2"]
}`,
		session.Role, session.Level, name,
		strings.ToUpper(session.Level), expectation,
		strings.ToUpper(session.Role), strings.Join(topics, ", "),
		session.Mode, modeHint, jdSection)
}
