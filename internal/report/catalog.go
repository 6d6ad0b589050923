package report

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Message keys are the English format strings; English needs no entries
// because the catalog falls back to the key itself.
var korean = map[string]string{
	"Study report: %s, test #%d (%s)":          "학습 리포트: %s, %d회차 시험 (%s)",
	"Goal: %s":                                 "목표: %s",
	"Some data was unavailable: %s":            "일부 데이터를 불러오지 못했습니다: %s",
	"Score":                                    "점수",
	"%d of %d correct (%s)":                    "%[2]d문제 중 %[1]d문제 정답 (%[3]s)",
	"Progress":                                 "진행도",
	"Current progress: %s":                     "현재 진행도: %s",
	"(previous %s, change %s)":                 "(이전 %s, 변화 %s)",
	"Confidence: %s":                           "신뢰도: %s",
	"low":                                      "낮음",
	"medium":                                   "보통",
	"high":                                     "높음",
	"Rationale: %s":                            "산출 근거: %s",
	"Estimated completion: %s (%d days)":       "예상 완료일: %s (%d일)",
	"Topic mastery":                            "주제별 숙련도",
	"No topics identified yet.":                "아직 파악된 주제가 없습니다.",
	"Wrong answers":                            "오답 분석",
	"Q%d (%s): %s. %s. Fix: %s. See %s":        "%d번 (%s): %s. %s. 해결: %s. 참고: %s",
	"...and %d more":                           "...외 %d개",
	"No errors: every question was answered correctly.": "오답 없음: 모든 문제를 맞혔습니다.",
	"Strengths":                                "강점",
	"Weaknesses":                               "약점",
	"Risks":                                    "위험 요소",
	"none":                                     "없음",
	"7-day plan":                               "7일 학습 계획",
	"Day %d (%d min): %s":                      "%d일차 (%d분): %s",
	"Micro-goals":                              "세부 목표",
	"Resources":                                "학습 자료",
	"Practice set":                             "연습 문제",
	"%d questions at %s difficulty":            "%d문제, 난이도 %s",
	"foundational":                             "기초",
	"intermediate":                             "중급",
	"advanced":                                 "심화",
	"Bottlenecks":                              "병목 요인",
	"Milestone":                                "마일스톤",
	"Next milestone: %s by %s":                 "다음 마일스톤: %s (%s까지)",
	"Goal end date: %s":                        "목표 종료일: %s",
	"on track":                                 "순조로움",
	"behind schedule":                          "일정 지연",
	"Next test":                                "다음 시험",
	"Next test on %s (in %d days)":             "다음 시험: %s (%d일 후)",
	"Focus areas:":                             "집중 영역:",
	"Reflection":                               "성찰",
	"Habit tip: %s":                            "습관 팁: %s",
	"Badges":                                   "배지",
	"Common":                                   "일반",
	"Rare":                                     "희귀",
	"Epic":                                     "영웅",
	"Legendary":                                "전설",
	"Perfect Score":                            "만점",
	"High Scorer":                              "고득점",
	"Ten Tests Taken":                          "시험 10회 응시",
	"Five Tests Taken":                         "시험 5회 응시",
	"Steady Learner":                           "꾸준한 학습자",
	"Near the Goal":                            "목표 임박",
	"Halfway There":                            "절반 달성",
	"First Step":                               "첫걸음",
	"Keep Going":                               "계속 도전",
	"No report available.":                     "리포트가 없습니다.",
}

// Supported lists the locales with a translation set, default first.
var Supported = []language.Tag{language.English, language.Korean}

func newCatalog() (catalog.Catalog, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range korean {
		if err := b.SetString(language.Korean, key, msg); err != nil {
			return nil, fmt.Errorf("catalog %q: %w", key, err)
		}
	}
	return b, nil
}
