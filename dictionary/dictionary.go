// Package dictionary holds the colloquial-Korean-to-legal-terminology
// map the Normalizer surfaces to the normalization LLM. The mapping is
// treated as opaque data: a handful of its entries are internally
// inconsistent (the same plain-language fragment appears with two
// different legal equivalents across related entries), and this
// package makes no attempt to resolve that — the spec this was
// grounded on mandates treating it as given.
package dictionary

// KeywordDict maps a colloquial or informal term to its legal
// equivalent, grouped below by subject matter for readability only;
// the map itself carries no grouping information at lookup time.
var KeywordDict = map[string]string{
	// 1. Contract parties and subject matter
	"집주인": "임대인", "건물주": "임대인", "주인집": "임대인",
	"임대업자": "임대인", "새주인": "임대인",
	"세입자": "임차인", "월세입자": "임차인", "세들어사는사람": "임차인",
	"임차자": "임차인", "입주자": "임차인",
	"부동산": "공인중개사", "중개인": "공인중개사", "중개소": "공인중개사",
	"빌라": "임차주택", "아파트": "임차주택", "오피스텔": "임차주택",
	"우리집": "임차주택", "거주지": "임차주택",
	"계약서": "임대차계약증서", "집문서": "임대차계약증서", "종이": "임대차계약증서",

	// 2. Deposits and money
	"보증금": "임대차보증금", "전세금": "임대차보증금", "보증보험": "보증금반환보증",
	"돈못받음": "보증금미반환", "안돌려줌": "보증금미반환", "못돌려받음": "보증금미반환",
	"월세": "차임", "관리비": "관리비", "연체": "차임연체", "밀림": "차임연체",
	"복비": "중개보수", "수수료": "중개보수", "중개비": "중개보수",
	"월세올리기": "차임증액", "인상": "증액", "더달라고함": "증액",
	"월세깎기": "차임감액", "할인": "감액", "내리기": "감액",
	"돈먼저받기": "우선변제권", "순위": "우선변제권", "안전장치": "대항력",
	"돌려받기": "보증금반환",

	// 3. Term, termination, renewal
	"재계약": "계약갱신", "연장": "계약갱신", "갱신": "계약갱신",
	"갱신청구": "계약갱신요구권", "2년더": "계약갱신요구권", "2플러스2": "계약갱신요구권",
	"자동연장": "묵시적갱신", "묵시": "묵시적갱신", "연락없음": "묵시적갱신",
	"이사": "주택의인도", "짐빼기": "주택의인도", "퇴거": "주택의인도",
	"방빼": "계약해지", "중도해지": "계약해지",
	"주소옮기기": "주민등록", "전입신고": "주민등록", "주소지이전": "주민등록",
	"집주인바뀜": "임대인지위승계", "주인바뀜": "임대인지위승계",
	"매매": "임대인지위승계",
	"나가라고함": "계약갱신거절", "쫓겨남": "명도", "비워달라": "명도",

	// 4. Repairs and habitability
	"집고치기": "수선의무", "수리": "수선의무", "고쳐줘": "수선의무",
	"안고쳐줌": "수선의무위반",
	"곰팡이": "하자", "물샘": "누수", "보일러고장": "하자", "파손": "훼손",
	"깨끗이치우기": "원상회복의무", "원래대로해놓기": "원상회복",
	"청소비": "원상회복비용", "청소": "원상회복",
	"층간소음": "공동생활평온", "옆집소음": "방음", "개키우기": "반려동물특약",
	"담배": "흡연금지특약",

	// 5. Rights, priority, registration date
	"확정일자": "확정일자", "전입": "주민등록", "대항력": "대항력",
	"우선변제": "우선변제권", "최우선": "최우선변제권",
	"경매": "경매절차", "공매": "공매절차",
	"등기": "등기부등본", "등본": "등기부등본",
	"근저당": "근저당권", "가압류": "가압류", "가처분": "가처분",
	"깡통전세": "전세피해", "사기": "전세사기", "경매넘어감": "권리리스크",

	// 6. Dispute resolution
	"내용증명": "내용증명", "소송": "소송", "민사": "민사소송",
	"조정위": "주택임대차분쟁조정위원회", "소송말고": "분쟁조정",
	"법원가기싫음": "분쟁조정",
	"집주인사망": "임차권승계", "자식상속": "임차권승계",
	"특약": "특약사항", "불공정": "강행규정위반", "독소조항": "불리한약정",
	"효력있나": "무효여부",
}
